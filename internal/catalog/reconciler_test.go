package catalog

import (
	"testing"

	"go.uber.org/zap"

	"github.com/igestorphone/igestorphone-sub000/internal/model"
)

func TestReconcileDeactivatesMissingKeys(t *testing.T) {
	db := openTestDB(t)
	reconciler := NewReconciler(db, zap.NewNop())

	a := seedProduct(t, db, model.Product{SupplierID: 1, Name: "A", Model: "iPhone 13", Color: "Azul", Storage: "128GB", Condition: model.ConditionNew, Price: 1, ProductType: model.ProductTypeApple, IsActive: true})
	b := seedProduct(t, db, model.Product{SupplierID: 1, Name: "B", Model: "iPhone 13", Color: "Preto", Storage: "128GB", Condition: model.ConditionNew, Price: 1, ProductType: model.ProductTypeApple, IsActive: true})
	c := seedProduct(t, db, model.Product{SupplierID: 1, Name: "C", Model: "iPhone 14", Color: "Azul", Storage: "256GB", Condition: model.ConditionNew, Price: 1, ProductType: model.ProductTypeApple, IsActive: true})

	keys := map[string]struct{}{
		ProductKey("iPhone 13", "Azul", "128GB", model.ConditionNew):  {},
		ProductKey("iPhone 14", "Azul", "256GB", model.ConditionNew):  {},
		ProductKey("iPhone 15", "Preto", "128GB", model.ConditionNew): {}, // new key, no row yet
	}

	deactivated, err := reconciler.Reconcile(1, model.ProductTypeApple, []string{model.ConditionNew}, keys)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if deactivated != 1 {
		t.Fatalf("deactivated = %d, want 1", deactivated)
	}

	// A fresh struct per load: gorm folds a populated primary key into the
	// next query's conditions.
	var gone model.Product
	db.First(&gone, b.ID)
	if gone.IsActive {
		t.Error("product B should be deactivated")
	}
	var keptA model.Product
	db.First(&keptA, a.ID)
	if !keptA.IsActive {
		t.Error("product A should stay active")
	}
	var keptC model.Product
	db.First(&keptC, c.ID)
	if !keptC.IsActive {
		t.Error("product C should stay active")
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	reconciler := NewReconciler(db, zap.NewNop())

	seedProduct(t, db, model.Product{SupplierID: 1, Name: "A", Model: "iPhone 13", Color: "Azul", Storage: "128GB", Condition: model.ConditionNew, Price: 1, ProductType: model.ProductTypeApple, IsActive: true})
	seedProduct(t, db, model.Product{SupplierID: 1, Name: "B", Model: "iPhone 13", Color: "Preto", Storage: "128GB", Condition: model.ConditionNew, Price: 1, ProductType: model.ProductTypeApple, IsActive: true})

	keys := map[string]struct{}{
		ProductKey("iPhone 13", "Azul", "128GB", model.ConditionNew): {},
	}

	first, err := reconciler.Reconcile(1, model.ProductTypeApple, []string{model.ConditionNew}, keys)
	if err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	if first != 1 {
		t.Fatalf("first run deactivated = %d, want 1", first)
	}

	second, err := reconciler.Reconcile(1, model.ProductTypeApple, []string{model.ConditionNew}, keys)
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if second != 0 {
		t.Fatalf("second run deactivated = %d, want 0 (idempotent)", second)
	}
}

func TestReconcileScopeIsolation(t *testing.T) {
	db := openTestDB(t)
	reconciler := NewReconciler(db, zap.NewNop())

	// Same supplier, different condition class and product type.
	usado := seedProduct(t, db, model.Product{SupplierID: 1, Name: "Usado", Model: "iPhone 12", Color: "Preto", Storage: "64GB", Condition: model.ConditionUsed, Price: 1, ProductType: model.ProductTypeApple, IsActive: true})
	android := seedProduct(t, db, model.Product{SupplierID: 1, Name: "Galaxy", Model: "Galaxy S24", Color: "Preto", Storage: "256GB", Condition: model.ConditionNew, Price: 1, ProductType: model.ProductTypeAndroid, IsActive: true})
	other := seedProduct(t, db, model.Product{SupplierID: 2, Name: "Outro", Model: "iPhone 13", Color: "Azul", Storage: "128GB", Condition: model.ConditionNew, Price: 1, ProductType: model.ProductTypeApple, IsActive: true})

	// Empty key set inside the sealed-new scope: only rows in scope may fall.
	deactivated, err := reconciler.Reconcile(1, model.ProductTypeApple, []string{model.ConditionNew}, map[string]struct{}{
		ProductKey("iPhone 99", "", "", model.ConditionNew): {},
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if deactivated != 0 {
		t.Fatalf("deactivated = %d, want 0", deactivated)
	}

	for _, p := range []model.Product{usado, android, other} {
		var reloaded model.Product
		db.First(&reloaded, p.ID)
		if !reloaded.IsActive {
			t.Errorf("out-of-scope product %q was deactivated", p.Name)
		}
	}
}

func TestReconcileSkipsUnresolvedScope(t *testing.T) {
	db := openTestDB(t)
	reconciler := NewReconciler(db, zap.NewNop())

	seedProduct(t, db, model.Product{SupplierID: 1, Name: "A", Model: "iPhone 13", Color: "Azul", Storage: "128GB", Condition: model.ConditionNew, Price: 1, ProductType: model.ProductTypeApple, IsActive: true})

	// Missing product type: skip entirely instead of deactivating an
	// unbounded scope.
	deactivated, err := reconciler.Reconcile(1, "", []string{model.ConditionNew}, map[string]struct{}{})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if deactivated != 0 {
		t.Fatalf("deactivated = %d, want 0 for unresolved scope", deactivated)
	}
}
