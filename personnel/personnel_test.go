package personnel

import (
	"strings"
	"testing"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/core/coretest"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roster = `code,first_name,last_name,email,phone,position,branch,department,team,shift
P001,Ayşe,Yılmaz,ayse@example.com,0532 111 22 33,Kasiyer,Kadıköy,Satış,Kasa,08:00-17:00
P002,Mehmet,Demir,,0532-444-55-66,Depo,Kadıköy,Lojistik,,08:00-17:00
P003,Zeynep,Kaya,,,Müdür,Beşiktaş,,,
`

func TestImportCSV(t *testing.T) {
	db := coretest.NewDB(t)

	result, err := ImportCSV(db, strings.NewReader(roster))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Rows: 3, Branches: 2, Shifts: 1}, *result)

	var people []model.Personnel
	require.NoError(t, db.Order("code").Find(&people).Error)
	require.Len(t, people, 3)
	assert.Equal(t, "05321112233", people[0].Phone)
	assert.NotNil(t, people[0].TeamID)
	assert.Nil(t, people[1].TeamID)
	assert.Equal(t, people[0].ShiftID, people[1].ShiftID)
	assert.Nil(t, people[2].ShiftID)
	assert.True(t, people[2].Active)

	var departments int64
	require.NoError(t, db.Model(&model.Department{}).Count(&departments).Error)
	assert.EqualValues(t, 2, departments)
}

func TestImportCSVUpsertsByCode(t *testing.T) {
	db := coretest.NewDB(t)
	_, err := ImportCSV(db, strings.NewReader(roster))
	require.NoError(t, err)

	update := "code,first_name,last_name,phone,active\nP001,Ayşe,Yılmaz-Kara,05329998877,false\n"
	result, err := ImportCSV(db, strings.NewReader(update))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)

	var p model.Personnel
	require.NoError(t, db.Where("code = ?", "P001").Take(&p).Error)
	assert.Equal(t, "Yılmaz-Kara", p.LastName)
	assert.Equal(t, "05329998877", p.Phone)
	assert.False(t, p.Active)

	var count int64
	require.NoError(t, db.Model(&model.Personnel{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestImportCSVRejectsBadRows(t *testing.T) {
	tests := []struct {
		name  string
		csv   string
		field string
	}{
		{"missing code", "code,first_name,last_name\n,Ali,Veli\n", ColumnCode},
		{"bad shift", "code,first_name,last_name,shift\nP9,Ali,Veli,sabah\n", ColumnShift},
		{"department without branch", "code,first_name,last_name,department\nP9,Ali,Veli,Satış\n", ColumnBranch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := coretest.NewDB(t)
			_, err := ImportCSV(db, strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.True(t, core.IsKind(err, core.KindValidation))

			var typed *core.Error
			require.ErrorAs(t, err, &typed)
			assert.Equal(t, tt.field, typed.Field)
			assert.Contains(t, typed.Message, "Satır 2")
		})
	}
}

func TestList(t *testing.T) {
	db := coretest.NewDB(t)
	branch := coretest.CreateBranch(t, db, "Merkez")
	other := coretest.CreateBranch(t, db, "Şube 2")
	coretest.CreatePersonnel(t, db, "Ali", "Veli", func(p *model.Personnel) { p.BranchID = &branch.ID })
	coretest.CreatePersonnel(t, db, "Berk", "Can", func(p *model.Personnel) { p.BranchID = &branch.ID; p.Active = false })
	coretest.CreatePersonnel(t, db, "Cem", "Deniz", func(p *model.Personnel) { p.BranchID = &other.ID })

	people, total, err := List(db, Filter{BranchID: &branch.ID}, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"Ali", "Berk"}, utils.Map(people, func(p model.Personnel) string { return p.FirstName }))

	people, total, err = List(db, Filter{Active: utils.Ptr(true)}, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, people, 1)
	assert.Equal(t, "Cem", people[0].FirstName)

	people, _, err = List(db, Filter{Search: "DEN"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Cem", people[0].FirstName)
}

func TestGetNotFound(t *testing.T) {
	db := coretest.NewDB(t)
	_, err := Get(db, 42)
	assert.True(t, core.IsKind(err, core.KindNotFound))
}
