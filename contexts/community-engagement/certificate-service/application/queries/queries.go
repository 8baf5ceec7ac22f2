package queries

import (
	"context"
	"log/slog"
	"strings"

	application "ugnayan/contexts/community-engagement/certificate-service/application"
	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

type UseCase struct {
	Records ports.Repository
	Logger  *slog.Logger
}

// Verify backs the public GET /certs/{identifier} endpoint.
func (uc UseCase) Verify(ctx context.Context, identifier string) (entities.CertificateRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	normalizedIdentifier := strings.ToLower(strings.TrimSpace(identifier))
	record, err := uc.Records.GetRecord(ctx, normalizedIdentifier)
	if err != nil {
		logger.Warn("certificate verification lookup failed",
			"event", "certificate_verify_failed",
			"module", "community-engagement/certificate-service",
			"layer", "application",
			"identifier", normalizedIdentifier,
			"error", err.Error(),
		)
		return entities.CertificateRecord{}, err
	}
	logger.Info("certificate verified",
		"event", "certificate_verified",
		"module", "community-engagement/certificate-service",
		"layer", "application",
		"identifier", record.Identifier,
		"activity_id", record.ActivityID,
	)
	return record, nil
}

func (uc UseCase) ListRecords(ctx context.Context, activityID string) ([]entities.CertificateRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	normalizedActivityID := strings.TrimSpace(activityID)
	records, err := uc.Records.ListRecordsByActivity(ctx, normalizedActivityID)
	if err != nil {
		logger.Warn("certificate record listing failed",
			"event", "certificate_list_records_failed",
			"module", "community-engagement/certificate-service",
			"layer", "application",
			"activity_id", normalizedActivityID,
			"error", err.Error(),
		)
		return nil, err
	}
	return records, nil
}
