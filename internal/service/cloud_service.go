package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
	"github.com/noah-isme/classroom-api/pkg/jobs"
)

// Cloud push outcomes reported to metrics.
const (
	CloudOutcomeWritten   = "written"
	CloudOutcomeUnchanged = "unchanged"
	CloudOutcomeFailed    = "failed"
)

const cloudPushJob = "cloud.push"

type cloudDocuments interface {
	Get(ctx context.Context, owner, collection string) (*models.CloudDocument, error)
	Hash(ctx context.Context, owner, collection string) (string, error)
	ListByOwner(ctx context.Context, owner string) ([]models.CloudDocument, error)
	Upsert(ctx context.Context, doc *models.CloudDocument) error
}

type cloudMetrics interface {
	RecordCloudPush(outcome string)
}

// CloudConfig tunes the push worker pool.
type CloudConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

type pushPayload struct {
	Owner      string
	Collection string
	Data       []byte
}

// CloudService mirrors namespaced collections to Postgres. Pushes are
// queued and never fail the caller; pulls degrade to "absent".
type CloudService struct {
	docs    cloudDocuments
	logger  *zap.Logger
	metrics cloudMetrics
	queue   *jobs.Queue
	clock   func() time.Time

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCloudService constructs CloudService. Call Start before pushing.
func NewCloudService(docs cloudDocuments, logger *zap.Logger, metrics cloudMetrics, cfg CloudConfig) (*CloudService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("init zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}

	s := &CloudService{
		docs:    docs,
		logger:  logger,
		metrics: metrics,
		clock:   time.Now,
		encoder: encoder,
		decoder: decoder,
	}
	s.queue = jobs.NewQueue("cloud-mirror", s.handlePush, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		Coalesce:   true,
		OnDone: func(job jobs.Job, err error) {
			if err != nil {
				s.record(CloudOutcomeFailed)
			}
		},
	})
	return s, nil
}

// Start launches the push workers.
func (s *CloudService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop halts the push workers.
func (s *CloudService) Stop() { s.queue.Stop() }

// Drain waits until every queued push has finished.
func (s *CloudService) Drain(ctx context.Context) error { return s.queue.Drain(ctx) }

// Mirror returns the workspace hook that feeds Push.
func (s *CloudService) Mirror() repository.Mirror {
	return s.Push
}

func (s *CloudService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCloudPush(outcome)
	}
}

// Push enqueues a collection snapshot for upload. A snapshot still waiting
// for the same collection is replaced by the newer one.
func (s *CloudService) Push(owner, collection string, data []byte) {
	if owner == "" {
		return
	}
	job := jobs.Job{
		ID:      owner + "/" + collection,
		Type:    cloudPushJob,
		Payload: pushPayload{Owner: owner, Collection: collection, Data: append([]byte(nil), data...)},
	}
	if err := s.queue.TryEnqueue(job); err != nil {
		s.logger.Warn("cloud push dropped", zap.String("owner", owner), zap.String("collection", collection), zap.Error(err))
	}
}

func payloadHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *CloudService) handlePush(ctx context.Context, job jobs.Job) error {
	p, ok := job.Payload.(pushPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	hash := payloadHash(p.Data)
	stored, err := s.docs.Hash(ctx, p.Owner, p.Collection)
	if err != nil {
		return err
	}
	if stored == hash {
		s.record(CloudOutcomeUnchanged)
		return nil
	}

	doc := &models.CloudDocument{
		OwnerEmail:  p.Owner,
		Collection:  p.Collection,
		Payload:     s.encoder.EncodeAll(p.Data, nil),
		PayloadHash: hash,
		UpdatedAt:   s.clock().UTC(),
	}
	if err := s.docs.Upsert(ctx, doc); err != nil {
		return err
	}
	s.record(CloudOutcomeWritten)
	s.logger.Debug("cloud push written", zap.String("owner", p.Owner), zap.String("collection", p.Collection), zap.Int("bytes", len(p.Data)))
	return nil
}

func (s *CloudService) decode(doc *models.CloudDocument) ([]byte, error) {
	raw, err := s.decoder.DecodeAll(doc.Payload, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if payloadHash(raw) != doc.PayloadHash {
		return nil, fmt.Errorf("payload hash mismatch for %s", doc.Collection)
	}
	return raw, nil
}

// Pull fetches one collection. Any failure is logged and reported as absent.
func (s *CloudService) Pull(ctx context.Context, owner, collection string) ([]byte, bool) {
	doc, err := s.docs.Get(ctx, owner, collection)
	if err != nil {
		s.logger.Warn("cloud pull failed", zap.String("owner", owner), zap.String("collection", collection), zap.Error(err))
		return nil, false
	}
	if doc == nil {
		return nil, false
	}
	raw, err := s.decode(doc)
	if err != nil {
		s.logger.Warn("cloud document unreadable", zap.String("owner", owner), zap.String("collection", collection), zap.Error(err))
		return nil, false
	}
	return raw, true
}

// PullAll overwrites the workspace's mirrored collections with their remote
// copies. Collections missing remotely are left untouched.
func (s *CloudService) PullAll(ctx context.Context, ws *repository.Workspace) error {
	owner := ws.Owner()
	if owner == "" {
		return nil
	}
	docs, err := s.docs.ListByOwner(ctx, owner)
	if err != nil {
		return err
	}
	remote := make(map[string]*models.CloudDocument, len(docs))
	for i := range docs {
		remote[docs[i].Collection] = &docs[i]
	}

	return ws.Atomically(func() error {
		restored := 0
		for _, collection := range repository.MirroredCollections {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, ok := remote[collection]
			if !ok {
				continue
			}
			raw, err := s.decode(doc)
			if err != nil {
				s.logger.Warn("skipping unreadable cloud document", zap.String("owner", owner), zap.String("collection", collection), zap.Error(err))
				continue
			}
			if ws.WriteRaw(ctx, collection, raw) {
				restored++
			}
		}
		s.logger.Info("cloud pull completed", zap.String("owner", owner), zap.Int("collections", restored))
		return nil
	})
}
