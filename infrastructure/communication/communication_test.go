package communication

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEmailBuffer(t *testing.T) {
	buf, err := BuildEmailBuffer(Message{
		From:    "ik@example.com",
		To:      []string{"ayse@example.com", "mehmet@example.com"},
		Subject: "İzin talebiniz onaylandı",
		Text:    "Merhaba Ayşe,\nİzniniz onaylandı.",
		Attachments: []Attachment{
			{Filename: "rapor.xlsx", ContentType: "application/octet-stream", Content: []byte(strings.Repeat("x", 200))},
		},
	})
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "To: ayse@example.com, mehmet@example.com\r\n")
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
	assert.Contains(t, raw, "text/plain; charset=UTF-8")
	assert.NotContains(t, raw, "text/html")
	assert.Contains(t, raw, `filename="rapor.xlsx"`)

	_, err = BuildEmailBuffer(Message{Subject: "boş"})
	assert.Error(t, err)
}

func TestNewAlerterWithoutToken(t *testing.T) {
	alerter := NewAlerter("", SlackOption{}, zerolog.Nop())
	_, ok := alerter.(LogAlerter)
	assert.True(t, ok)
	assert.NoError(t, alerter.Error(context.Background(), "rotation failed"))
}
