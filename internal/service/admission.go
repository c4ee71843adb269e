package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	hfotel "github.com/Strob0t/HeadlineForge/internal/adapter/otel"
	"github.com/Strob0t/HeadlineForge/internal/domain"
	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
)

// Admission codes reported to clients and metrics.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeLimitExceeded      = "LIMIT_EXCEEDED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// AdmissionService authenticates a bearer secret and meters the call.
type AdmissionService struct {
	resolver *TenantResolver
	ledger   *QuotaLedger
	metrics  *hfotel.Metrics
}

// NewAdmissionService creates an AdmissionService. metrics may be nil.
func NewAdmissionService(resolver *TenantResolver, ledger *QuotaLedger, metrics *hfotel.Metrics) *AdmissionService {
	return &AdmissionService{resolver: resolver, ledger: ledger, metrics: metrics}
}

// Admit resolves secret to a tenant and charges one call to its quota.
// Errors wrap domain.ErrUnauthorized, domain.ErrLimitExceeded or
// domain.ErrUnavailable. The Decision is populated whenever metering ran.
//
// The caller's cancellation is ignored so a disconnect cannot leave a
// half-applied charge.
func (s *AdmissionService) Admit(ctx context.Context, secret string) (apikey.Identity, Decision, error) {
	ctx, span := hfotel.StartAdmissionSpan(context.WithoutCancel(ctx))
	id, dec, err := s.admit(ctx, secret)
	hfotel.EndSpan(span, err)

	switch {
	case err == nil:
		s.metrics.RecordAdmission(ctx)
	case errors.Is(err, domain.ErrUnauthorized):
		s.metrics.RecordRejection(ctx, CodeUnauthorized)
	case errors.Is(err, domain.ErrLimitExceeded):
		s.metrics.RecordRejection(ctx, CodeLimitExceeded)
	default:
		s.metrics.RecordRejection(ctx, CodeServiceUnavailable)
		slog.ErrorContext(ctx, "admission failed", "error", err)
	}
	return id, dec, err
}

func (s *AdmissionService) admit(ctx context.Context, secret string) (apikey.Identity, Decision, error) {
	if !apikey.ValidFormat(secret) {
		return apikey.Identity{}, Decision{}, fmt.Errorf("malformed credential: %w", domain.ErrUnauthorized)
	}

	id, err := s.resolver.Resolve(ctx, apikey.Hash(secret))
	if errors.Is(err, domain.ErrNotFound) {
		return apikey.Identity{}, Decision{}, fmt.Errorf("unknown credential: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return apikey.Identity{}, Decision{}, errors.Join(domain.ErrUnavailable, err)
	}

	dec, err := s.ledger.Admit(ctx, id.TenantID)
	if err != nil {
		return id, dec, errors.Join(domain.ErrUnavailable, err)
	}
	if !dec.Admitted {
		return id, dec, fmt.Errorf("tenant %s used %d of %d: %w", id.TenantID, dec.Count, dec.Limit, domain.ErrLimitExceeded)
	}
	return id, dec, nil
}
