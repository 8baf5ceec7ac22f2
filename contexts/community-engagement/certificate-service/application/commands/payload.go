package commands

import (
	"context"
	"encoding/json"
	"time"

	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

// DeliveryHandoff is the payload handed to the notification consumer. Its
// shape is part of the external delivery contract.
type DeliveryHandoff struct {
	ActivityID string              `json:"activity_id"`
	Recipients []DeliveryRecipient `json:"recipients"`
}

type DeliveryRecipient struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Identifier string `json:"identifier"`
	StorageURL string `json:"storage_url,omitempty"`
}

type batchPayload struct {
	ActivityID   string             `json:"activity_id"`
	Recipients   []recipientPayload `json:"recipients"`
	Template     []byte             `json:"template"`
	Signatures   [][]byte           `json:"signatures,omitempty"`
	Layout       layoutPayload      `json:"layout"`
	CodeAnchor   string             `json:"code_anchor"`
	DeliverAfter bool               `json:"deliver_after"`
	ItemTimeout  int64              `json:"item_timeout_ms,omitempty"`
}

type recipientPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type layoutPayload struct {
	Variant  string              `json:"variant"`
	Standard standardPayload     `json:"standard,omitempty"`
	Cursive  []breakpointPayload `json:"cursive,omitempty"`
}

type standardPayload struct {
	BaseFontSize             float64 `json:"base_font_size"`
	MinFontSize              float64 `json:"min_font_size"`
	BaseNameLength           int     `json:"base_name_length"`
	ScaleRatio               float64 `json:"scale_ratio"`
	VerticalBase             float64 `json:"vertical_base"`
	VerticalAdjustmentFactor float64 `json:"vertical_adjustment_factor"`
}

type breakpointPayload struct {
	MaxNameLength    int     `json:"max_name_length"`
	FontSize         float64 `json:"font_size"`
	VerticalPosition float64 `json:"vertical_position"`
}

// EncodeBatchPayload snapshots a batch command as the durable job payload.
func EncodeBatchPayload(cmd RunBatchCommand) ([]byte, error) {
	payload := batchPayload{
		ActivityID:   cmd.ActivityID,
		Template:     cmd.Template,
		Signatures:   cmd.Signatures,
		CodeAnchor:   string(cmd.CodeAnchor),
		DeliverAfter: cmd.DeliverAfter,
		ItemTimeout:  cmd.ItemTimeout.Milliseconds(),
		Layout: layoutPayload{
			Variant: string(cmd.Layout.Variant),
			Standard: standardPayload{
				BaseFontSize:             cmd.Layout.Standard.BaseFontSize,
				MinFontSize:              cmd.Layout.Standard.MinFontSize,
				BaseNameLength:           cmd.Layout.Standard.BaseNameLength,
				ScaleRatio:               cmd.Layout.Standard.ScaleRatio,
				VerticalBase:             cmd.Layout.Standard.VerticalBase,
				VerticalAdjustmentFactor: cmd.Layout.Standard.VerticalAdjustmentFactor,
			},
		},
	}
	for _, recipient := range cmd.Recipients {
		payload.Recipients = append(payload.Recipients, recipientPayload{
			Name:  recipient.Name,
			Email: recipient.Email,
		})
	}
	for _, bp := range cmd.Layout.Cursive {
		payload.Layout.Cursive = append(payload.Layout.Cursive, breakpointPayload{
			MaxNameLength:    bp.MaxNameLength,
			FontSize:         bp.FontSize,
			VerticalPosition: bp.VerticalPosition,
		})
	}
	return json.Marshal(payload)
}

// DecodeBatchPayload restores a deferred batch command from a job row.
func DecodeBatchPayload(data []byte) (RunBatchCommand, error) {
	var payload batchPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return RunBatchCommand{}, err
	}
	cmd := RunBatchCommand{
		ActivityID:   payload.ActivityID,
		Template:     payload.Template,
		Signatures:   payload.Signatures,
		CodeAnchor:   entities.CodeAnchor(payload.CodeAnchor),
		Mode:         entities.BatchModeDeferred,
		DeliverAfter: payload.DeliverAfter,
		ItemTimeout:  time.Duration(payload.ItemTimeout) * time.Millisecond,
		Layout: entities.LayoutConfig{
			Variant: entities.LayoutVariant(payload.Layout.Variant),
			Standard: entities.StandardLayout{
				BaseFontSize:             payload.Layout.Standard.BaseFontSize,
				MinFontSize:              payload.Layout.Standard.MinFontSize,
				BaseNameLength:           payload.Layout.Standard.BaseNameLength,
				ScaleRatio:               payload.Layout.Standard.ScaleRatio,
				VerticalBase:             payload.Layout.Standard.VerticalBase,
				VerticalAdjustmentFactor: payload.Layout.Standard.VerticalAdjustmentFactor,
			},
		},
	}
	for _, recipient := range payload.Recipients {
		cmd.Recipients = append(cmd.Recipients, entities.Recipient{
			Name:  recipient.Name,
			Email: recipient.Email,
		})
	}
	for _, bp := range payload.Layout.Cursive {
		cmd.Layout.Cursive = append(cmd.Layout.Cursive, entities.CursiveBreakpoint{
			MaxNameLength:    bp.MaxNameLength,
			FontSize:         bp.FontSize,
			VerticalPosition: bp.VerticalPosition,
		})
	}
	return cmd, nil
}

func (uc UseCase) deliveryEnvelope(ctx context.Context, handoff DeliveryHandoff) ([]byte, error) {
	data, err := json.Marshal(handoff)
	if err != nil {
		return nil, err
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ports.EventEnvelope{
		EventID:   eventID,
		EventType: DeliveryRequestedEventType,
		Data:      data,
	})
}
