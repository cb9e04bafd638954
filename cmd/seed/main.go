// Command seed loads a roster CSV and gives every branch a kiosk screen.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"axiapac.com/personnel/app"
	"axiapac.com/personnel/config"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/personnel"
	"axiapac.com/personnel/qr"
	"axiapac.com/personnel/utils"
	"gorm.io/gorm"
)

func screenID(branch model.Branch) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		}
		return -1
	}, strings.ToLower(branch.Name))
	return fmt.Sprintf("%s-%d", strings.Trim(id, "-"), branch.ID)
}

func seedScreens(db *gorm.DB, registry *qr.Registry) ([]model.QRScreen, error) {
	var branches []model.Branch
	if err := db.Order("id").Find(&branches).Error; err != nil {
		return nil, err
	}

	var created []model.QRScreen
	for _, b := range branches {
		var count int64
		if err := db.Model(&model.QRScreen{}).Where("branch_id = ?", b.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}
		screen, err := registry.Create(db, qr.CreateScreenRequest{
			ScreenID: screenID(b),
			BranchID: b.ID,
			Name:     b.Name + " Giriş",
			Active:   true,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, *screen)
	}
	return created, nil
}

func main() {
	file := flag.String("file", "", "roster CSV to import")
	screens := flag.Bool("screens", true, "create a screen for branches without one")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	dm, err := app.OpenDatabase(cfg)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	defer dm.Close()

	err = dm.Transaction(ctx, func(tx *gorm.DB) error {
		if *file != "" {
			f, err := os.Open(*file)
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", *file, err)
			}
			defer f.Close()

			result, err := personnel.ImportCSV(tx, f)
			if err != nil {
				return err
			}
			fmt.Printf("[INFO] Imported %d rows, %d new branches, %d new shifts\n", result.Rows, result.Branches, result.Shifts)
		}

		if !*screens {
			return nil
		}
		created, err := seedScreens(tx, qr.NewRegistry(utils.SystemClock()))
		if err != nil {
			return err
		}
		for _, s := range created {
			fmt.Printf("[INFO] Screen %s (%s) access code %s\n", s.ScreenID, s.Name, s.AccessCode)
		}
		return nil
	})
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	fmt.Println("[SUCCESS] Seed finished")
}
