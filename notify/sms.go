package notify

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"axiapac.com/personnel/core"
	"axiapac.com/personnel/infrastructure/communication"
	"axiapac.com/personnel/model"
	"axiapac.com/personnel/utils"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultSMSConcurrency = 5

// RecipientFilter narrows bulk SMS to active personnel; every set field must match.
type RecipientFilter struct {
	BranchID     *uint
	DepartmentID *uint
	TeamID       *uint
}

// PhoneNumbers returns the non-empty phone numbers of the active personnel
// matching filter.
func PhoneNumbers(db *gorm.DB, filter RecipientFilter) ([]string, error) {
	query := db.Model(&model.Personnel{}).Where("active = ? AND phone <> ''", true)
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}

	var phones []string
	if err := query.Order("id").Pluck("phone", &phones).Error; err != nil {
		return nil, err
	}
	return NormalizeNumbers(phones), nil
}

// NormalizeNumbers cleans numbers, drops empties and collapses duplicates.
func NormalizeNumbers(numbers []string) []string {
	cleaned := utils.Filter(utils.Map(numbers, utils.NormalizePhone), func(n string) bool { return n != "" })
	return utils.Unique(cleaned, func(n string) string { return n })
}

type Failure struct {
	PhoneNumber string `json:"phoneNumber"`
	Error       string `json:"error"`
}

type Summary struct {
	Requested int       `json:"requested"`
	Sent      int       `json:"sent"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures"`
}

type SMSService struct {
	Sender      communication.SMSSender
	Clock       utils.Clock
	Log         zerolog.Logger
	Concurrency int
}

func NewSMSService(sender communication.SMSSender, clock utils.Clock, log zerolog.Logger) *SMSService {
	return &SMSService{Sender: sender, Clock: clock, Log: log, Concurrency: defaultSMSConcurrency}
}

// SendBulk delivers message to every number. Individual failures are
// reported in the summary; only a send where nothing got through is an error.
func (s *SMSService) SendBulk(ctx context.Context, db *gorm.DB, numbers []string, message, sentBy string) (*Summary, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, core.Validation("message", "Mesaj zorunludur")
	}
	numbers = NormalizeNumbers(numbers)
	if len(numbers) == 0 {
		return nil, core.Validation("phoneNumbers", "En az bir telefon numarası gerekli")
	}

	summary := &Summary{Requested: len(numbers), Failures: []Failure{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))
	for _, number := range numbers {
		g.Go(func() error {
			err := s.Sender.SendSMS(gctx, number, message)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				summary.Failures = append(summary.Failures, Failure{PhoneNumber: number, Error: err.Error()})
				return nil
			}
			summary.Sent++
			return nil
		})
	}
	g.Wait()

	s.record(db, numbers, message, sentBy, summary)

	if summary.Sent == 0 {
		return summary, core.Downstream("SMS gönderilemedi", nil)
	}
	return summary, nil
}

// SendFiltered resolves the recipients from filter and sends to them.
func (s *SMSService) SendFiltered(ctx context.Context, db *gorm.DB, filter RecipientFilter, message, sentBy string) (*Summary, error) {
	numbers, err := PhoneNumbers(db, filter)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return nil, core.Validation("phoneNumbers", "Filtreye uyan telefon numarası bulunamadı")
	}
	return s.SendBulk(ctx, db, numbers, message, sentBy)
}

// record writes the audit row; failures are logged and ignored.
func (s *SMSService) record(db *gorm.DB, numbers []string, message, sentBy string, summary *Summary) {
	encoded, err := json.Marshal(numbers)
	if err != nil {
		s.Log.Warn().Err(err).Msg("sms log encode failed")
		return
	}
	entry := model.SmsLog{
		Message:      message,
		PhoneNumbers: datatypes.JSON(encoded),
		Requested:    summary.Requested,
		Sent:         summary.Sent,
		Failed:       summary.Failed,
		SentBy:       sentBy,
		CreatedAt:    s.Clock.Now(),
	}
	if err := db.Create(&entry).Error; err != nil {
		s.Log.Warn().Err(err).Msg("sms log write failed")
	}
}
