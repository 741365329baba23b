package receipt

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"

	"github.com/lebarbier/lebarbier-api/internal/config"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

// Payload is what the receipt QR code encodes. Staff scan it at pickup to
// pull the order up.
type Payload struct {
	Type        string `json:"type"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Total       string `json:"total"`
	Status      string `json:"status"`
}

const payloadType = "order_receipt"

type Generator struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewGenerator(cfg *config.Config) *Generator {
	size := cfg.Receipt.Size
	if size <= 0 {
		size = 256
	}
	return &Generator{size: size, level: recoveryLevel(cfg.Receipt.Level)}
}

func recoveryLevel(s string) qrcode.RecoveryLevel {
	switch s {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

func NewPayload(o *models.Order) Payload {
	return Payload{
		Type:        payloadType,
		OrderID:     o.ID.String(),
		OrderNumber: o.OrderNumber,
		Total:       o.Total.StringFixed(2),
		Status:      o.Status,
	}
}

// PNG renders the order's receipt code.
func (g *Generator) PNG(o *models.Order) ([]byte, error) {
	data, err := json.Marshal(NewPayload(o))
	if err != nil {
		return nil, errors.Wrap(err, "marshal receipt payload")
	}

	code, err := qrcode.New(string(data), g.level)
	if err != nil {
		return nil, errors.Wrap(err, "create qr code")
	}

	png, err := code.PNG(g.size)
	if err != nil {
		return nil, errors.Wrap(err, "render qr code")
	}

	return png, nil
}

// Parse decodes a scanned receipt payload.
func Parse(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, errors.Wrap(err, "decode receipt payload")
	}
	if p.Type != payloadType {
		return Payload{}, errors.Errorf("unexpected payload type %q", p.Type)
	}
	return p, nil
}
