package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/colorstudio/server/internal/domain/ledger"
	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/inbound"
	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/colorstudio/server/internal/shared/logger"
	"github.com/colorstudio/server/internal/utils/metrics"
	"github.com/colorstudio/server/internal/utils/pagination"
)

// FinalizeTimeout bounds settlement after the provider call returned. An
// attempt pending for longer than ProviderTimeout+FinalizeTimeout is abandoned.
const FinalizeTimeout = 10 * time.Second

// Domain orchestrates one coloring request:
// reserve credits, call the provider once, then settle or release.
type Domain struct {
	ledger    inbound.LedgerDomain
	attemptDB outbound.AttemptDatabasePort
	generator outbound.ImageGeneratorPort
	storage   outbound.ImageStoragePort
	config    *Config
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewDomain creates a new generation domain. storage may be nil, in which
// case images are not persisted and the provider's URL is returned as is.
func NewDomain(
	ledgerDomain inbound.LedgerDomain,
	attemptDB outbound.AttemptDatabasePort,
	generator outbound.ImageGeneratorPort,
	storage outbound.ImageStoragePort,
	config *Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Domain {
	if config == nil {
		config = DefaultConfig()
	}
	if config.ReleaseAttempts < 1 {
		config.ReleaseAttempts = 1
	}
	return &Domain{
		ledger:    ledgerDomain,
		attemptDB: attemptDB,
		generator: generator,
		storage:   storage,
		config:    config,
		metrics:   m,
		logger:    logger,
	}
}

// Compile-time interface check
var _ inbound.GenerationDomain = (*Domain)(nil)

// Generate runs one coloring request.
func (d *Domain) Generate(ctx context.Context, userID uuid.UUID, req *inbound.GenerateRequest) (*inbound.GenerateResult, error) {
	log := logger.WithContext(ctx, d.logger).With(zap.String("user_id", userID.String()))

	img, err := decodeDataURI(req.ImageData)
	if err != nil {
		return nil, err
	}
	if d.config.MaxImageBytes > 0 && len(img.Data) > d.config.MaxImageBytes {
		return nil, ErrImageTooLarge
	}

	style := ParseStyle(req.SelectedStyle)
	attempt := &model.GenerationAttempt{
		ID:            uuid.New(),
		UserID:        userID,
		SelectedStyle: style.String(),
		PromptUsed:    style.Prompt(),
	}

	funding, err := d.ledger.Reserve(ctx, attempt)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			d.metrics.RecordGeneration(style.String(), model.FundingDenied.String(), "denied")
			log.Info("generation denied", zap.String("style", style.String()))
			return nil, ErrInsufficientCredits
		}
		d.metrics.RecordGeneration(style.String(), "", "storage_error")
		log.Error("reserve attempt failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	log = log.With(zap.String("attempt_id", attempt.ID.String()), zap.String("funding", funding.Kind.String()))

	// The reservation must be finalized even if the client goes away.
	finalCtx, cancelFinal := context.WithTimeout(context.WithoutCancel(ctx), d.config.ProviderTimeout+FinalizeTimeout)
	defer cancelFinal()

	if d.storage != nil {
		d.storeOriginal(finalCtx, attempt, img, log)
	}

	callCtx, cancel := context.WithTimeout(ctx, d.config.ProviderTimeout)
	result, err := d.generator.Generate(callCtx, &outbound.ImageGenerationRequest{
		Prompt:       attempt.PromptUsed,
		ImageDataURI: req.ImageData,
	})
	cancel()
	if err != nil {
		return nil, d.abort(finalCtx, attempt, funding, err, log)
	}

	imageURL := result.ImageURL
	if d.storage != nil {
		imageURL = d.storeGenerated(finalCtx, attempt, imageURL, log)
	}

	credit, err := d.ledger.Settle(finalCtx, attempt.ID, imageURL)
	if err != nil {
		log.Error("settle attempt failed", zap.Error(err))
		d.release(finalCtx, attempt.ID, "settlement failed: "+err.Error(), log)
		d.metrics.RecordGeneration(style.String(), funding.Kind.String(), "storage_error")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	d.metrics.RecordGeneration(style.String(), funding.Kind.String(), "completed")
	log.Info("generation completed", zap.String("style", style.String()))

	return &inbound.GenerateResult{
		AttemptID:                attempt.ID,
		ColoredImageURL:          imageURL,
		CreditsUsed:              model.CentsToCurrency(funding.CostCents),
		RemainingFreeGenerations: credit.FreeGenerationsRemaining,
		RemainingCredits:         model.CentsToCurrency(credit.PaidCreditsCents),
	}, nil
}

// abort releases the reservation of a failed attempt and builds the caller's error.
func (d *Domain) abort(ctx context.Context, attempt *model.GenerationAttempt, funding model.Funding, cause error, log *zap.Logger) error {
	reason := cause.Error()
	if errors.Is(cause, context.DeadlineExceeded) {
		reason = fmt.Sprintf("image generation timed out after %s", d.config.ProviderTimeout)
	}

	log.Warn("generation failed", zap.String("reason", reason))
	d.release(ctx, attempt.ID, reason, log)
	d.metrics.RecordGeneration(attempt.SelectedStyle, funding.Kind.String(), "failed")

	return &FailureError{Reason: reason, Err: cause}
}

// release refunds a failed attempt, retrying transient store errors. An attempt
// that still cannot be released stays pending until the ledger's stale sweep.
func (d *Domain) release(ctx context.Context, attemptID uuid.UUID, reason string, log *zap.Logger) {
	backoff := d.config.ReleaseBackoff
	for try := 1; ; try++ {
		err := d.ledger.Release(ctx, attemptID, reason)
		if err == nil || errors.Is(err, ledger.ErrAlreadyFinalized) || errors.Is(err, ledger.ErrAttemptNotFound) {
			return
		}
		if try >= d.config.ReleaseAttempts {
			log.Error("release attempt failed, leaving it to the stale sweep", zap.Int("tries", try), zap.Error(err))
			return
		}
		log.Warn("release attempt failed, retrying", zap.Int("try", try), zap.Error(err))

		select {
		case <-ctx.Done():
			log.Error("release attempt abandoned", zap.Error(ctx.Err()))
			return
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (d *Domain) storeOriginal(ctx context.Context, attempt *model.GenerationAttempt, img *sourceImage, log *zap.Logger) {
	key := fmt.Sprintf("originals/%s/%s.%s", attempt.UserID, attempt.ID, img.Extension())
	if err := d.storage.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), img.ContentType); err != nil {
		log.Warn("upload original image failed", zap.Error(err))
		return
	}
	url := d.storage.URL(key)
	if err := d.attemptDB.SetOriginalImageURL(ctx, attempt.ID, url); err != nil {
		log.Warn("record original image failed", zap.Error(err))
		return
	}
	attempt.OriginalImageURL = url
}

// storeGenerated persists an inline generated image and returns its public URL.
// Remote URLs and failed uploads fall back to what the provider returned.
func (d *Domain) storeGenerated(ctx context.Context, attempt *model.GenerationAttempt, imageURL string, log *zap.Logger) string {
	img, err := decodeDataURI(imageURL)
	if err != nil {
		return imageURL
	}
	key := fmt.Sprintf("generated/%s/%s.%s", attempt.UserID, attempt.ID, img.Extension())
	if err := d.storage.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), img.ContentType); err != nil {
		log.Warn("upload generated image failed", zap.Error(err))
		return imageURL
	}
	return d.storage.URL(key)
}

// GetAttempt returns one of the user's attempts.
func (d *Domain) GetAttempt(ctx context.Context, userID, attemptID uuid.UUID) (*model.GenerationAttempt, error) {
	attempt, err := d.attemptDB.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

// ListAttempts returns the user's most recent attempts.
func (d *Domain) ListAttempts(ctx context.Context, userID uuid.UUID, limit int) ([]*model.GenerationAttempt, error) {
	limit = pagination.Limit(limit, d.config.DefaultHistoryLimit, d.config.MaxHistoryLimit)

	attempts, err := d.attemptDB.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

// Styles returns the style catalog.
func (d *Domain) Styles() []inbound.StyleInfo {
	styles := Styles()
	out := make([]inbound.StyleInfo, 0, len(styles))
	for _, s := range styles {
		out = append(out, inbound.StyleInfo{
			ID:          s.String(),
			Name:        s.Name(),
			Description: s.Description(),
		})
	}
	return out
}
