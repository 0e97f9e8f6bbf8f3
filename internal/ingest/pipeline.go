package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/igestorphone/igestorphone-sub000/internal/catalog"
	"github.com/igestorphone/igestorphone-sub000/internal/extraction"
	"github.com/igestorphone/igestorphone-sub000/internal/model"
	"github.com/igestorphone/igestorphone-sub000/internal/normalize"
	"github.com/igestorphone/igestorphone-sub000/prometheus"
)

// Request is one full ingestion batch for a single supplier's list. Either
// SupplierID or SupplierName must be set; an unknown name creates the
// supplier.
type Request struct {
	SupplierID      uint
	SupplierName    string
	SupplierContact string
	ProductType     string
	ListKind        string
	RawListText     string
	Candidates      []extraction.Candidate
	Channel         string
	Actor           string
}

// RejectedCandidate pairs a filtered-out candidate with the reason it was
// rejected.
type RejectedCandidate struct {
	Candidate extraction.Candidate `json:"candidate"`
	Reason    string               `json:"reason"`
}

// Summary is the outcome of one batch, returned to the caller even when
// individual candidates failed.
type Summary struct {
	SupplierID       uint                `json:"supplier_id"`
	SavedCount       int                 `json:"saved_count"`
	CreatedCount     int                 `json:"created_count"`
	UpdatedCount     int                 `json:"updated_count"`
	DeactivatedCount int                 `json:"deactivated_count"`
	Rejected         []RejectedCandidate `json:"rejected"`
	AveragePrice     float64             `json:"average_price"`
	Errors           []string            `json:"errors,omitempty"`
	Warnings         []string            `json:"warnings,omitempty"`
}

// Pipeline runs extraction output through normalization, matching,
// persistence and reconciliation. Batches for the same supplier are
// serialized with a per-supplier mutex held for the whole run, so two
// concurrent submissions cannot interleave and double-create products.
type Pipeline struct {
	db         *gorm.DB
	matcher    *catalog.Matcher
	recorder   *catalog.Recorder
	reconciler *catalog.Reconciler
	log        *zap.Logger

	supplierLocks sync.Map // supplier id -> *sync.Mutex
}

// NewPipeline wires the pipeline onto a database handle
func NewPipeline(db *gorm.DB, log *zap.Logger) *Pipeline {
	return &Pipeline{
		db:         db,
		matcher:    catalog.NewMatcher(db),
		recorder:   catalog.NewRecorder(db, log),
		reconciler: catalog.NewReconciler(db, log),
		log:        log,
	}
}

// Run processes one batch to completion. Candidates are handled strictly in
// order; a failure on one candidate is recorded and the rest of the batch
// continues. Reconciliation runs only after every candidate was persisted,
// and only when the batch produced at least one valid identity key.
func (p *Pipeline) Run(ctx context.Context, req *Request) (*Summary, error) {
	start := time.Now()
	channel := req.Channel
	if channel == "" {
		channel = "api"
	}

	productType := req.ProductType
	if productType == "" {
		productType = model.ProductTypeApple
	}

	conditionClass, err := catalog.ConditionClass(req.ListKind)
	if err != nil {
		prometheus.RecordBatch(channel, "invalid", time.Since(start))
		return nil, err
	}

	supplier, err := p.resolveSupplier(req)
	if err != nil {
		prometheus.RecordBatch(channel, "invalid", time.Since(start))
		return nil, err
	}

	lock := p.lockFor(supplier.ID)
	lock.Lock()
	defer lock.Unlock()

	log := p.log.With(
		zap.Uint("supplier_id", supplier.ID),
		zap.String("supplier", supplier.Name),
		zap.String("list_kind", req.ListKind),
		zap.String("channel", channel))
	log.Info("Starting ingestion batch", zap.Int("candidates", len(req.Candidates)))

	summary := &Summary{SupplierID: supplier.ID}

	if err := p.recorder.SaveSnapshot(supplier.ID, req.RawListText); err != nil {
		// The snapshot is an audit aid; losing it does not abort the batch.
		log.Warn("Raw list snapshot failed", zap.Error(err))
		summary.Warnings = append(summary.Warnings, "raw list snapshot failed: "+err.Error())
	}

	keysInList := make(map[string]struct{}, len(req.Candidates))
	var priceSum float64

	for _, candidate := range req.Candidates {
		norm, reason := p.normalizeCandidate(candidate, req.ListKind)
		if reason != "" {
			summary.Rejected = append(summary.Rejected, RejectedCandidate{Candidate: candidate, Reason: reason})
			prometheus.RecordCandidate("rejected")
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch canceled: %w", err)
		}

		existing, err := p.matcher.Match(supplier.ID, productType, norm.Model, norm.Color, norm.Storage, norm.Condition)
		if err == nil {
			if existing != nil {
				err = p.recorder.Update(existing, candidate.Name, norm.Model, norm.Color, norm.Storage, norm.Variant, norm.ConditionDetail, norm.Price, req.Actor)
				if err == nil {
					summary.UpdatedCount++
					prometheus.RecordCandidate("updated")
				}
			} else {
				_, err = p.recorder.Create(supplier.ID, productType, candidate.Name, norm.Model, norm.Color, norm.Storage, norm.Condition, norm.ConditionDetail, norm.Variant, norm.Price, req.Actor)
				if err == nil {
					summary.CreatedCount++
					prometheus.RecordCandidate("created")
				}
			}
		}
		if err != nil {
			// One malformed candidate must never abort the batch.
			log.Error("Candidate processing failed",
				zap.String("candidate", candidate.Name),
				zap.Error(err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", candidate.Name, err))
			prometheus.RecordCandidate("failed")
			continue
		}

		keysInList[catalog.ProductKey(norm.Model, norm.Color, norm.Storage, norm.Condition)] = struct{}{}
		summary.SavedCount++
		priceSum += norm.Price
	}

	if summary.SavedCount > 0 {
		summary.AveragePrice = priceSum / float64(summary.SavedCount)

		deactivated, err := p.reconciler.Reconcile(supplier.ID, productType, conditionClass, keysInList)
		if err != nil {
			log.Error("Reconciliation failed", zap.Error(err))
			summary.Errors = append(summary.Errors, "reconciliation: "+err.Error())
		}
		summary.DeactivatedCount = deactivated
	} else {
		// An empty batch means "nothing to reconcile", never "deactivate
		// everything in scope".
		log.Warn("Batch produced no valid products; reconciliation skipped")
	}

	log.Info("Ingestion batch finished",
		zap.Int("saved", summary.SavedCount),
		zap.Int("created", summary.CreatedCount),
		zap.Int("updated", summary.UpdatedCount),
		zap.Int("deactivated", summary.DeactivatedCount),
		zap.Int("rejected", len(summary.Rejected)),
		zap.Duration("duration", time.Since(start)))
	prometheus.RecordBatch(channel, "ok", time.Since(start))
	return summary, nil
}

// normalized holds a candidate after dictionary normalization
type normalized struct {
	Model           string
	Color           string
	Storage         string
	Condition       string
	ConditionDetail string
	Variant         string
	Price           float64
}

// normalizeCandidate validates required attributes and maps the raw tokens
// to canonical values. A non-empty reason means the candidate is rejected
// before matching; attributes are never silently guessed.
func (p *Pipeline) normalizeCandidate(c extraction.Candidate, listKind string) (normalized, string) {
	var out normalized

	if c.Price == nil || *c.Price <= 0 {
		return out, "missing price"
	}

	conditionRaw := c.Condition
	if conditionRaw == "" {
		conditionRaw = c.ConditionDetail
	}
	canonical, detail := normalize.Condition(conditionRaw)
	if canonical == "" {
		return out, fmt.Sprintf("unrecognized condition %q", conditionRaw)
	}
	if !catalog.ConditionAllowed(listKind, canonical) {
		return out, fmt.Sprintf("condition %s not allowed in a %s list", canonical, listKind)
	}
	if c.ConditionDetail != "" {
		detail = strings.ToUpper(strings.TrimSpace(c.ConditionDetail))
	}

	modelName := c.Model
	if modelName == "" {
		modelName = c.Name
	}

	storage := normalize.Storage(c.Storage)
	if storage == "" && c.Storage == "" {
		storage = normalize.Storage(c.Name)
	}

	out.Model = strings.TrimSpace(modelName)
	out.Color = normalize.Color(c.Color, modelName)
	out.Storage = storage
	out.Condition = canonical
	out.ConditionDetail = detail
	out.Variant = normalize.Variant(c.Variant, c.Notes, c.Model, c.Name)
	out.Price = *c.Price
	return out, ""
}

// resolveSupplier finds the batch's supplier by id or name, creating it on
// first ingestion under a new name.
func (p *Pipeline) resolveSupplier(req *Request) (*model.Supplier, error) {
	var supplier model.Supplier

	if req.SupplierID != 0 {
		if err := p.db.First(&supplier, req.SupplierID).Error; err != nil {
			return nil, fmt.Errorf("supplier %d not found: %w", req.SupplierID, err)
		}
		return &supplier, nil
	}

	name := strings.TrimSpace(req.SupplierName)
	if name == "" {
		return nil, fmt.Errorf("supplier id or name is required")
	}

	err := p.db.Where("name = ?", name).First(&supplier).Error
	if err == gorm.ErrRecordNotFound {
		supplier = model.Supplier{
			Name:     name,
			Phone:    req.SupplierContact,
			IsActive: true,
		}
		if err := p.db.Create(&supplier).Error; err != nil {
			return nil, fmt.Errorf("create supplier %q: %w", name, err)
		}
		p.log.Info("Created supplier on first ingestion",
			zap.Uint("supplier_id", supplier.ID),
			zap.String("name", name))
		return &supplier, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve supplier %q: %w", name, err)
	}
	return &supplier, nil
}

// lockFor returns the mutex serializing batches for one supplier
func (p *Pipeline) lockFor(supplierID uint) *sync.Mutex {
	lock, _ := p.supplierLocks.LoadOrStore(supplierID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
