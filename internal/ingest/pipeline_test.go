package ingest

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/igestorphone/igestorphone-sub000/internal/catalog"
	"github.com/igestorphone/igestorphone-sub000/internal/extraction"
	"github.com/igestorphone/igestorphone-sub000/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Supplier{},
		&model.Product{},
		&model.PriceHistory{},
		&model.RawListSnapshot{},
		&model.AuditLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedSupplier(t *testing.T, db *gorm.DB, name, phone string) model.Supplier {
	t.Helper()
	s := model.Supplier{Name: name, Phone: phone, IsActive: true}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	return s
}

func price(v float64) *float64 { return &v }

func candidate(name, modelName, color, storage, condition string, p float64) extraction.Candidate {
	return extraction.Candidate{
		Name:      name,
		Model:     modelName,
		Color:     color,
		Storage:   storage,
		Condition: condition,
		Price:     price(p),
	}
}

func TestPipelineIdempotence(t *testing.T) {
	db := openTestDB(t)
	supplier := seedSupplier(t, db, "Acme", "")
	pipeline := NewPipeline(db, zap.NewNop())

	req := &Request{
		SupplierID: supplier.ID,
		ListKind:   catalog.ListKindSealedNew,
		Candidates: []extraction.Candidate{
			candidate("iPhone 13 Azul 128GB", "iPhone 13", "Azul", "128GB", "LACRADO", 3800),
			candidate("iPhone 14 Preto 256GB", "iPhone 14", "Preto", "256GB", "LACRADO", 4900),
		},
	}

	first, err := pipeline.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.CreatedCount != 2 || first.UpdatedCount != 0 {
		t.Fatalf("first run: created=%d updated=%d", first.CreatedCount, first.UpdatedCount)
	}

	second, err := pipeline.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.CreatedCount != 0 {
		t.Errorf("second run created = %d, want 0", second.CreatedCount)
	}
	if second.UpdatedCount != 2 {
		t.Errorf("second run updated = %d, want 2", second.UpdatedCount)
	}
	if second.DeactivatedCount != 0 {
		t.Errorf("second run deactivated = %d, want 0", second.DeactivatedCount)
	}

	// Unchanged prices add no history rows on the second pass.
	var historyCount int64
	db.Model(&model.PriceHistory{}).Count(&historyCount)
	if historyCount != 2 {
		t.Errorf("history rows = %d, want 2", historyCount)
	}
}

func TestPipelineReconciliationCorrectness(t *testing.T) {
	db := openTestDB(t)
	supplier := seedSupplier(t, db, "Acme", "")
	pipeline := NewPipeline(db, zap.NewNop())

	// Establish active keys {A, B, C}.
	_, err := pipeline.Run(context.Background(), &Request{
		SupplierID: supplier.ID,
		ListKind:   catalog.ListKindSealedNew,
		Candidates: []extraction.Candidate{
			candidate("A", "iPhone 13", "Azul", "128GB", "LACRADO", 3800),
			candidate("B", "iPhone 13", "Preto", "128GB", "LACRADO", 3700),
			candidate("C", "iPhone 14", "Azul", "256GB", "LACRADO", 4900),
		},
	})
	if err != nil {
		t.Fatalf("setup run: %v", err)
	}

	// New list carries {A, C, D}.
	summary, err := pipeline.Run(context.Background(), &Request{
		SupplierID: supplier.ID,
		ListKind:   catalog.ListKindSealedNew,
		Candidates: []extraction.Candidate{
			candidate("A", "iPhone 13", "Azul", "128GB", "LACRADO", 3800),
			candidate("C", "iPhone 14", "Azul", "256GB", "LACRADO", 4900),
			candidate("D", "iPhone 15", "Preto", "256GB", "LACRADO", 6100),
		},
	})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if summary.UpdatedCount != 2 {
		t.Errorf("updated = %d, want 2 (A and C)", summary.UpdatedCount)
	}
	if summary.CreatedCount != 1 {
		t.Errorf("created = %d, want 1 (D)", summary.CreatedCount)
	}
	if summary.DeactivatedCount != 1 {
		t.Errorf("deactivated = %d, want 1 (B)", summary.DeactivatedCount)
	}

	var b model.Product
	db.Where("name = ?", "B").First(&b)
	if b.IsActive {
		t.Error("B should be deactivated: its key vanished from the list")
	}

	var activeCount int64
	db.Model(&model.Product{}).Where("is_active = ?", true).Count(&activeCount)
	if activeCount != 3 {
		t.Errorf("active rows = %d, want 3 (A, C, D)", activeCount)
	}
}

func TestPipelineScopeIsolation(t *testing.T) {
	db := openTestDB(t)
	supplier := seedSupplier(t, db, "Acme", "")
	pipeline := NewPipeline(db, zap.NewNop())

	// Seed a used product through its own list kind.
	_, err := pipeline.Run(context.Background(), &Request{
		SupplierID: supplier.ID,
		ListKind:   catalog.ListKindUsed,
		Candidates: []extraction.Candidate{
			candidate("iPhone 12 usado", "iPhone 12", "Preto", "64GB", "SWAP", 2100),
		},
	})
	if err != nil {
		t.Fatalf("used run: %v", err)
	}

	// A sealed-new list that shares none of the used keys.
	summary, err := pipeline.Run(context.Background(), &Request{
		SupplierID: supplier.ID,
		ListKind:   catalog.ListKindSealedNew,
		Candidates: []extraction.Candidate{
			candidate("iPhone 15 lacrado", "iPhone 15", "Azul", "128GB", "LACRADO", 5200),
		},
	})
	if err != nil {
		t.Fatalf("sealed run: %v", err)
	}
	if summary.DeactivatedCount != 0 {
		t.Errorf("sealed-new run deactivated = %d, want 0", summary.DeactivatedCount)
	}

	var used model.Product
	db.Where("condition = ?", model.ConditionUsed).First(&used)
	if !used.IsActive {
		t.Error("sealed-new reconciliation touched a Used-condition product")
	}
}

func TestPipelineRejectionNotCorruption(t *testing.T) {
	db := openTestDB(t)
	supplier := seedSupplier(t, db, "Acme", "")
	pipeline := NewPipeline(db, zap.NewNop())

	noPrice := extraction.Candidate{
		Name: "iPhone 13 sem preço", Model: "iPhone 13", Color: "Azul",
		Storage: "128GB", Condition: "LACRADO",
	}
	badCondition := candidate("iPhone 12 swap", "iPhone 12", "Preto", "64GB", "SWAP", 2100)

	summary, err := pipeline.Run(context.Background(), &Request{
		SupplierID: supplier.ID,
		ListKind:   catalog.ListKindSealedNew,
		Candidates: []extraction.Candidate{
			noPrice,
			badCondition, // Used condition inside a sealed-new list
			candidate("iPhone 14 ok", "iPhone 14", "Preto", "256GB", "LACRADO", 4900),
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.SavedCount != 1 {
		t.Errorf("saved = %d, want 1", summary.SavedCount)
	}
	if len(summary.Rejected) != 2 {
		t.Fatalf("rejected = %d, want 2", len(summary.Rejected))
	}
	for _, rejected := range summary.Rejected {
		if rejected.Reason == "" {
			t.Error("rejected candidate carries no reason")
		}
	}
	if !strings.Contains(summary.Rejected[0].Reason, "price") {
		t.Errorf("first rejection reason = %q, want a missing-price reason", summary.Rejected[0].Reason)
	}

	// The rejected candidates left no trace in the catalog.
	var productCount, historyCount int64
	db.Model(&model.Product{}).Count(&productCount)
	db.Model(&model.PriceHistory{}).Count(&historyCount)
	if productCount != 1 || historyCount != 1 {
		t.Errorf("products=%d history=%d, want 1/1", productCount, historyCount)
	}
}

func TestPipelineEndToEndAcme(t *testing.T) {
	db := openTestDB(t)
	supplier := seedSupplier(t, db, "Acme", "")
	pipeline := NewPipeline(db, zap.NewNop())

	// Existing active product at 3800.
	_, err := pipeline.Run(context.Background(), &Request{
		SupplierID: supplier.ID,
		ListKind:   catalog.ListKindSealedNew,
		Candidates: []extraction.Candidate{
			candidate("iPhone 13 Blue 128GB", "iPhone 13", "Blue", "128GB", "LACRADO", 3800),
		},
	})
	if err != nil {
		t.Fatalf("seed run: %v", err)
	}

	// New list: same product at 4000, plus a black one.
	summary, err := pipeline.Run(context.Background(), &Request{
		SupplierID: supplier.ID,
		ListKind:   catalog.ListKindSealedNew,
		Candidates: []extraction.Candidate{
			candidate("iPhone 13 Blue 128GB", "iPhone 13", "Blue", "128GB", "LACRADO", 4000),
			candidate("iPhone 13 Black 128GB", "iPhone 13", "Black", "128GB", "LACRADO", 3900),
		},
	})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if summary.UpdatedCount != 1 || summary.CreatedCount != 1 || summary.DeactivatedCount != 0 {
		t.Fatalf("summary = updated %d / created %d / deactivated %d, want 1/1/0",
			summary.UpdatedCount, summary.CreatedCount, summary.DeactivatedCount)
	}

	// The blue product's history gained the 3800 -> 4000 change.
	var blue model.Product
	if err := db.Where("color = ?", "Azul").First(&blue).Error; err != nil {
		t.Fatalf("blue product not found: %v", err)
	}
	var history []model.PriceHistory
	db.Where("product_id = ?", blue.ID).Order("id").Find(&history)
	if len(history) != 2 || history[0].Price != 3800 || history[1].Price != 4000 {
		t.Fatalf("blue history = %+v, want [3800 4000]", history)
	}

	// Both colors normalized into the Portuguese catalog vocabulary.
	var black model.Product
	if err := db.Where("color = ?", "Preto").First(&black).Error; err != nil {
		t.Fatalf("black product not found: %v", err)
	}
	if !black.IsActive || !blue.IsActive {
		t.Error("both products should be active after the batch")
	}
}

func TestPipelineAutoCreatesSupplier(t *testing.T) {
	db := openTestDB(t)
	pipeline := NewPipeline(db, zap.NewNop())

	summary, err := pipeline.Run(context.Background(), &Request{
		SupplierName:    "Fornecedor Novo",
		SupplierContact: "+5511999990000",
		ListKind:        catalog.ListKindSealedNew,
		Candidates: []extraction.Candidate{
			candidate("iPhone 14", "iPhone 14", "Preto", "128GB", "LACRADO", 4500),
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.SupplierID == 0 {
		t.Fatal("supplier was not created")
	}

	var supplier model.Supplier
	if err := db.First(&supplier, summary.SupplierID).Error; err != nil {
		t.Fatalf("created supplier not found: %v", err)
	}
	if supplier.Name != "Fornecedor Novo" || supplier.Phone != "+5511999990000" {
		t.Errorf("supplier = %+v", supplier)
	}
}

func TestPipelineEmptyBatchSkipsReconciliation(t *testing.T) {
	db := openTestDB(t)
	supplier := seedSupplier(t, db, "Acme", "")
	pipeline := NewPipeline(db, zap.NewNop())

	_, err := pipeline.Run(context.Background(), &Request{
		SupplierID: supplier.ID,
		ListKind:   catalog.ListKindSealedNew,
		Candidates: []extraction.Candidate{
			candidate("iPhone 13", "iPhone 13", "Azul", "128GB", "LACRADO", 3800),
		},
	})
	if err != nil {
		t.Fatalf("seed run: %v", err)
	}

	// Every candidate rejected: nothing to reconcile, nothing deactivated.
	summary, err := pipeline.Run(context.Background(), &Request{
		SupplierID: supplier.ID,
		ListKind:   catalog.ListKindSealedNew,
		Candidates: []extraction.Candidate{
			{Name: "iPhone 15 sem preço", Model: "iPhone 15", Condition: "LACRADO"},
		},
	})
	if err != nil {
		t.Fatalf("empty run: %v", err)
	}
	if summary.SavedCount != 0 || summary.DeactivatedCount != 0 {
		t.Fatalf("summary = %+v, want no saves and no deactivations", summary)
	}

	var active int64
	db.Model(&model.Product{}).Where("is_active = ?", true).Count(&active)
	if active != 1 {
		t.Errorf("active products = %d, want 1 (scope untouched)", active)
	}
}

func TestPipelineAveragePrice(t *testing.T) {
	db := openTestDB(t)
	supplier := seedSupplier(t, db, "Acme", "")
	pipeline := NewPipeline(db, zap.NewNop())

	summary, err := pipeline.Run(context.Background(), &Request{
		SupplierID: supplier.ID,
		ListKind:   catalog.ListKindSealedNew,
		Candidates: []extraction.Candidate{
			candidate("A", "iPhone 13", "Azul", "128GB", "LACRADO", 3000),
			candidate("B", "iPhone 14", "Preto", "256GB", "LACRADO", 5000),
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.AveragePrice != 4000 {
		t.Errorf("average price = %v, want 4000", summary.AveragePrice)
	}
}
