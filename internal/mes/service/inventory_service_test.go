package service

import (
	"sync"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/testutil"
)

type invTestEnv struct {
	svc       *InventoryService
	productID string
	w1        string
	w2        string
}

func setupInventoryTest(t *testing.T) *invTestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewInventoryService(repos.Inventory, repos.Warehouse, repos.Product, db)

	p := testutil.SeedProduct(t, db, "RAW-500", "螺丝", "RAW", nil)
	w1 := testutil.SeedWarehouse(t, db, "WH-A", "主仓")
	w2 := testutil.SeedWarehouse(t, db, "WH-B", "分仓")

	return &invTestEnv{svc: svc, productID: p.ID, w1: w1.ID, w2: w2.ID}
}

func (e *invTestEnv) adjust(t *testing.T, warehouseID, txType string, qty float64) *entity.InventoryItem {
	t.Helper()
	item, err := e.svc.Adjust(AdjustRequest{
		ProductID:   e.productID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		Type:        txType,
		Reason:      "test",
	}, "tester")
	if err != nil {
		t.Fatalf("adjust %s %v: %v", txType, qty, err)
	}
	return item
}

func TestInventoryAdjustLedger(t *testing.T) {
	env := setupInventoryTest(t)

	item := env.adjust(t, env.w1, entity.TxTypeIncrease, 100)
	if item.QtyOnHand != 100 {
		t.Errorf("expected 100 on hand, got %v", item.QtyOnHand)
	}
	if item.LastMovedAt == nil {
		t.Error("expected last_moved_at to be set")
	}

	item = env.adjust(t, env.w1, entity.TxTypeDecrease, 30)
	if item.QtyOnHand != 70 {
		t.Errorf("expected 70 on hand, got %v", item.QtyOnHand)
	}

	// 每次调整追加一条流水，余额快照与调整后一致
	txs, total, err := env.svc.ListTransactions(env.productID, env.w1, 1, 20)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 transactions, got %d", total)
	}
	var sum float64
	for _, tx := range txs {
		sum += tx.Quantity
		if tx.RefType != entity.RefTypeAdjust {
			t.Errorf("expected ref type ADJUST, got %s", tx.RefType)
		}
	}
	if sum != 70 {
		t.Errorf("expected transaction quantities to replay to 70, got %v", sum)
	}
}

func TestInventoryAdjustRejectsNegativeStock(t *testing.T) {
	env := setupInventoryTest(t)
	env.adjust(t, env.w1, entity.TxTypeIncrease, 10)

	_, err := env.svc.Adjust(AdjustRequest{
		ProductID:   env.productID,
		WarehouseID: env.w1,
		Quantity:    50,
		Type:        entity.TxTypeDecrease,
		Reason:      "盘亏",
	}, "tester")
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation error on negative stock, got %v", err)
	}

	// 失败的调整不留痕
	item, err := env.svc.repo.GetByProductAndWarehouse(env.productID, env.w1)
	if err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if item.QtyOnHand != 10 {
		t.Errorf("expected stock unchanged at 10, got %v", item.QtyOnHand)
	}
	_, total, err := env.svc.ListTransactions(env.productID, env.w1, 1, 20)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 transaction after failed adjust, got %d", total)
	}
}

func TestInventoryAdjustInvalidType(t *testing.T) {
	env := setupInventoryTest(t)
	_, err := env.svc.Adjust(AdjustRequest{
		ProductID:   env.productID,
		WarehouseID: env.w1,
		Quantity:    1,
		Type:        "RESET",
		Reason:      "bad",
	}, "tester")
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
}

func TestInventoryTransfer(t *testing.T) {
	env := setupInventoryTest(t)
	env.adjust(t, env.w1, entity.TxTypeIncrease, 100)

	err := env.svc.Transfer(TransferRequest{
		ProductID:         env.productID,
		SourceWarehouseID: env.w1,
		TargetWarehouseID: env.w2,
		Quantity:          40,
		Reason:            "补货",
	}, "tester")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	src, err := env.svc.repo.GetByProductAndWarehouse(env.productID, env.w1)
	if err != nil {
		t.Fatalf("reload source: %v", err)
	}
	dst, err := env.svc.repo.GetByProductAndWarehouse(env.productID, env.w2)
	if err != nil {
		t.Fatalf("reload target: %v", err)
	}
	if src.QtyOnHand != 60 || dst.QtyOnHand != 40 {
		t.Errorf("expected 60/40 after transfer, got %v/%v", src.QtyOnHand, dst.QtyOnHand)
	}

	// 两条流水互相指向对方仓库
	outTxs, _, err := env.svc.ListTransactions(env.productID, env.w1, 1, 20)
	if err != nil {
		t.Fatalf("list source transactions: %v", err)
	}
	var out *entity.StockTransaction
	for i := range outTxs {
		if outTxs[i].RefType == entity.RefTypeTransfer {
			out = &outTxs[i]
		}
	}
	if out == nil {
		t.Fatal("expected a TRANSFER transaction on source warehouse")
	}
	if out.Type != entity.TxTypeOut || out.Quantity != -40 || out.RefID != env.w2 {
		t.Errorf("unexpected outbound transaction: %+v", out)
	}
}

func TestInventoryTransferInsufficientStock(t *testing.T) {
	env := setupInventoryTest(t)
	env.adjust(t, env.w1, entity.TxTypeIncrease, 5)

	err := env.svc.Transfer(TransferRequest{
		ProductID:         env.productID,
		SourceWarehouseID: env.w1,
		TargetWarehouseID: env.w2,
		Quantity:          10,
	}, "tester")
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation error on insufficient stock, got %v", err)
	}

	// 失败的调拨不得留下半程状态
	src, err := env.svc.repo.GetByProductAndWarehouse(env.productID, env.w1)
	if err != nil {
		t.Fatalf("reload source: %v", err)
	}
	if src.QtyOnHand != 5 {
		t.Errorf("expected source unchanged at 5, got %v", src.QtyOnHand)
	}
	if _, err := env.svc.repo.GetByProductAndWarehouse(env.productID, env.w2); err == nil {
		t.Error("expected no inventory row created at target for failed transfer")
	}
}

func TestInventoryTransferSameWarehouse(t *testing.T) {
	env := setupInventoryTest(t)
	err := env.svc.Transfer(TransferRequest{
		ProductID:         env.productID,
		SourceWarehouseID: env.w1,
		TargetWarehouseID: env.w1,
		Quantity:          1,
	}, "tester")
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation error for same source and target, got %v", err)
	}
}

func TestInventoryConcurrentTransfersConserveStock(t *testing.T) {
	env := setupInventoryTest(t)
	env.adjust(t, env.w1, entity.TxTypeIncrease, 50)

	// 10个并发调拨各10件，库存只够5个成功。行锁串行化检查，总量守恒。
	const workers = 10
	var wg sync.WaitGroup
	successes := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := env.svc.Transfer(TransferRequest{
				ProductID:         env.productID,
				SourceWarehouseID: env.w1,
				TargetWarehouseID: env.w2,
				Quantity:          10,
			}, "tester")
			if err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	var won int
	for range successes {
		won++
	}
	if won != 5 {
		t.Errorf("expected exactly 5 transfers to succeed, got %d", won)
	}

	src, err := env.svc.repo.GetByProductAndWarehouse(env.productID, env.w1)
	if err != nil {
		t.Fatalf("reload source: %v", err)
	}
	dst, err := env.svc.repo.GetByProductAndWarehouse(env.productID, env.w2)
	if err != nil {
		t.Fatalf("reload target: %v", err)
	}
	if src.QtyOnHand < 0 {
		t.Errorf("source stock went negative: %v", src.QtyOnHand)
	}
	if src.QtyOnHand+dst.QtyOnHand != 50 {
		t.Errorf("stock not conserved: %v + %v != 50", src.QtyOnHand, dst.QtyOnHand)
	}
}

func TestInventoryExportStock(t *testing.T) {
	env := setupInventoryTest(t)
	env.adjust(t, env.w1, entity.TxTypeIncrease, 12)

	f, err := env.svc.ExportStock(repository.StockListParams{})
	if err != nil {
		t.Fatalf("export stock: %v", err)
	}
	defer f.Close()

	v, err := f.GetCellValue("Stock", "A1")
	if err != nil {
		t.Fatalf("read header cell: %v", err)
	}
	if v != "SKU" {
		t.Errorf("expected SKU header, got %q", v)
	}
	sku, err := f.GetCellValue("Stock", "A2")
	if err != nil {
		t.Fatalf("read data cell: %v", err)
	}
	if sku != "RAW-500" {
		t.Errorf("expected first row SKU RAW-500, got %q", sku)
	}
}

func TestWarehouseCreateAndGet(t *testing.T) {
	env := setupInventoryTest(t)

	w, err := env.svc.CreateWarehouse(CreateWarehouseRequest{Code: "WH-C", Name: "成品仓", Address: "三号楼"})
	if err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	if w.Status != entity.WarehouseStatusActive {
		t.Errorf("expected ACTIVE, got %s", w.Status)
	}

	got, err := env.svc.GetWarehouse(w.ID)
	if err != nil {
		t.Fatalf("get warehouse: %v", err)
	}
	if got.Code != "WH-C" {
		t.Errorf("expected code WH-C, got %s", got.Code)
	}

	if _, err := env.svc.GetWarehouse("00000000-0000-0000-0000-000000000000"); KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
