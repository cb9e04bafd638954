package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/core/coretest"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var clock = utils.NewFakeClock(time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC))

type fakeSender struct {
	mu     sync.Mutex
	sent   []string
	failOn map[string]bool
}

func (f *fakeSender) SendSMS(_ context.Context, phone, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[phone] {
		return errors.New("undeliverable")
	}
	f.sent = append(f.sent, phone)
	return nil
}

// seedTen creates ten people; three of them are in branch 2, department 5
// with a phone number.
func seedTen(t *testing.T, db *gorm.DB) {
	b1 := coretest.CreateBranch(t, db, "Şube 1")
	b2 := coretest.CreateBranch(t, db, "Şube 2")
	require.EqualValues(t, 2, b2.ID)

	d5 := uint(5)
	d6 := uint(6)
	people := []struct {
		branch uint
		dept   *uint
		phone  string
		active bool
	}{
		{b2.ID, &d5, "0532 111 11 11", true},
		{b2.ID, &d5, "0532-222-22-22", true},
		{b2.ID, &d5, "05323333333", true},
		{b2.ID, &d5, "", true},
		{b2.ID, &d5, "05324444444", false},
		{b2.ID, &d6, "05325555555", true},
		{b2.ID, nil, "05326666666", true},
		{b1.ID, &d5, "05327777777", true},
		{b1.ID, &d6, "05328888888", true},
		{b1.ID, nil, "05329999999", true},
	}
	for i, p := range people {
		p := p
		coretest.CreatePersonnel(t, db, "Kişi", string(rune('A'+i)), func(m *model.Personnel) {
			m.BranchID = &p.branch
			m.DepartmentID = p.dept
			m.Phone = p.phone
			m.Active = p.active
		})
	}
}

func TestPhoneNumbersFilter(t *testing.T) {
	db := coretest.NewDB(t)
	seedTen(t, db)

	branch, dept := uint(2), uint(5)
	numbers, err := PhoneNumbers(db, RecipientFilter{BranchID: &branch, DepartmentID: &dept})
	require.NoError(t, err)
	assert.Equal(t, []string{"05321111111", "05322222222", "05323333333"}, numbers)

	all, err := PhoneNumbers(db, RecipientFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestSendFilteredTargetsExactly(t *testing.T) {
	db := coretest.NewDB(t)
	seedTen(t, db)
	sender := &fakeSender{}
	svc := NewSMSService(sender, clock, zerolog.Nop())

	branch, dept := uint(2), uint(5)
	summary, err := svc.SendFiltered(context.Background(), db, RecipientFilter{BranchID: &branch, DepartmentID: &dept}, "Yarın toplantı var", "admin")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Requested)
	assert.Equal(t, 3, summary.Sent)

	sort.Strings(sender.sent)
	assert.Equal(t, []string{"05321111111", "05322222222", "05323333333"}, sender.sent)

	var logs []model.SmsLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	var logged []string
	require.NoError(t, json.Unmarshal(logs[0].PhoneNumbers, &logged))
	assert.Len(t, logged, 3)
	assert.Equal(t, "admin", logs[0].SentBy)
}

func TestSendBulk(t *testing.T) {
	db := coretest.NewDB(t)
	sender := &fakeSender{failOn: map[string]bool{"05320000000": true}}
	svc := NewSMSService(sender, clock, zerolog.Nop())
	ctx := context.Background()

	summary, err := svc.SendBulk(ctx, db, []string{" 0532 000 00 00", "05321111111", "0532 111 1111", ""}, "Merhaba", "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Requested)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "05320000000", summary.Failures[0].PhoneNumber)

	_, err = svc.SendBulk(ctx, db, []string{"05320000000"}, "Merhaba", "admin")
	assert.True(t, core.IsKind(err, core.KindDownstream))

	_, err = svc.SendBulk(ctx, db, []string{" ", ""}, "Merhaba", "admin")
	assert.True(t, core.IsKind(err, core.KindValidation))

	_, err = svc.SendBulk(ctx, db, []string{"05321111111"}, "  ", "admin")
	assert.True(t, core.IsKind(err, core.KindValidation))
}

func TestBroadcast(t *testing.T) {
	db := coretest.NewDB(t)
	seedTen(t, db)
	b := NewBroadcaster(clock, zerolog.Nop())

	t.Run("All active personnel", func(t *testing.T) {
		n, err := b.Broadcast(db, BroadcastRequest{Title: "Duyuru", Message: "Bayram tatili", TargetType: model.TargetAll, CreatedBy: "admin"})
		require.NoError(t, err)
		assert.Equal(t, 9, n.Recipients)
		assert.Equal(t, model.NotificationInfo, n.Type)
	})

	t.Run("Branch", func(t *testing.T) {
		branch := uint(2)
		n, err := b.Broadcast(db, BroadcastRequest{Title: "Şube", Message: "Mesaj", Type: model.NotificationWarning, TargetType: model.TargetBranch, TargetID: &branch})
		require.NoError(t, err)
		assert.Equal(t, 6, n.Recipients)

		var receipts int64
		require.NoError(t, db.Model(&model.NotificationReceipt{}).Where("notification_id = ?", n.ID).Count(&receipts).Error)
		assert.EqualValues(t, 6, receipts)
	})

	t.Run("Individual missing", func(t *testing.T) {
		id := uint(999)
		_, err := b.Broadcast(db, BroadcastRequest{Title: "x", Message: "y", TargetType: model.TargetIndividual, TargetID: &id})
		assert.True(t, core.IsKind(err, core.KindNotFound))
	})

	t.Run("Target id required", func(t *testing.T) {
		_, err := b.Broadcast(db, BroadcastRequest{Title: "x", Message: "y", TargetType: model.TargetTeam})
		assert.True(t, core.IsKind(err, core.KindValidation))
	})

	t.Run("Bad type", func(t *testing.T) {
		_, err := b.Broadcast(db, BroadcastRequest{Title: "x", Message: "y", Type: "urgent", TargetType: model.TargetAll})
		assert.True(t, core.IsKind(err, core.KindValidation))
	})
}

func TestMarkReadAndList(t *testing.T) {
	db := coretest.NewDB(t)
	person := coretest.CreatePersonnel(t, db, "Ayşe", "Yılmaz", nil)
	b := NewBroadcaster(clock, zerolog.Nop())

	n, err := b.Broadcast(db, BroadcastRequest{Title: "Merhaba", Message: "Hoş geldin", TargetType: model.TargetIndividual, TargetID: &person.ID})
	require.NoError(t, err)

	unread, err := b.List(db, person.ID, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	require.NotNil(t, unread[0].Notification)
	assert.Equal(t, "Merhaba", unread[0].Notification.Title)

	receipt, err := b.MarkRead(db, n.ID, person.ID)
	require.NoError(t, err)
	require.NotNil(t, receipt.ReadAt)
	first := *receipt.ReadAt

	clock.Advance(time.Minute)
	receipt, err = b.MarkRead(db, n.ID, person.ID)
	require.NoError(t, err)
	assert.True(t, first.Equal(*receipt.ReadAt))

	unread, err = b.List(db, person.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	_, err = b.MarkRead(db, n.ID, person.ID+1)
	assert.True(t, core.IsKind(err, core.KindNotFound))
}
