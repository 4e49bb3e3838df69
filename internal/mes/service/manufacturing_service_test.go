package service

import (
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/testutil"
	"gorm.io/gorm"
)

type moTestEnv struct {
	db     *gorm.DB
	svcs   *Services
	bomID  string
	prodID string
}

// setupMOTest 准备一个带两道工序BOM的可下单环境
func setupMOTest(t *testing.T) *moTestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svcs := NewServices(repos, db, nil)

	finished := testutil.SeedProduct(t, db, "FIN-100", "组装件", "FINISHED", nil)
	raw := testutil.SeedProduct(t, db, "RAW-100", "板材", "RAW", floatPtr(10))
	wc := testutil.SeedWorkCenter(t, db, "装配一线")

	bom, err := svcs.BOM.Create(CreateBOMRequest{
		ProductID: finished.ID,
		Name:      "组装件配方",
		Items:     []BOMItemRequest{{ComponentID: raw.ID, QtyPerUnit: 4}},
		Operations: []BOMOperationRequest{
			{Name: "切割", WorkCenterID: wc.ID, DurationMinutes: 30},
			{Name: "装配", WorkCenterID: wc.ID, DurationMinutes: 60},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("create BOM: %v", err)
	}

	return &moTestEnv{db: db, svcs: svcs, bomID: bom.ID, prodID: finished.ID}
}

func (e *moTestEnv) createMO(t *testing.T, qty float64) *entity.ManufacturingOrder {
	t.Helper()
	mo, err := e.svcs.Manufacturing.Create(CreateMORequest{
		ProductID:  e.prodID,
		BOMID:      e.bomID,
		QtyPlanned: qty,
	}, "tester")
	if err != nil {
		t.Fatalf("create MO: %v", err)
	}
	return mo
}

func TestMOCreateDefaults(t *testing.T) {
	env := setupMOTest(t)
	mo := env.createMO(t, 10)

	if mo.Status != entity.MOStatusPlanned {
		t.Errorf("expected PLANNED, got %s", mo.Status)
	}
	if mo.Priority != entity.PriorityMedium {
		t.Errorf("expected default priority MEDIUM, got %s", mo.Priority)
	}
	if len(mo.Code) == 0 || mo.Code[:3] != "MO-" {
		t.Errorf("expected code with MO- prefix, got %s", mo.Code)
	}
}

func TestMOCreateUnknownProduct(t *testing.T) {
	env := setupMOTest(t)
	_, err := env.svcs.Manufacturing.Create(CreateMORequest{
		ProductID:  "00000000-0000-0000-0000-000000000000",
		BOMID:      env.bomID,
		QtyPlanned: 1,
	}, "tester")
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMOStartProductionExpandsWorkOrders(t *testing.T) {
	env := setupMOTest(t)
	mo := env.createMO(t, 10)

	started, err := env.svcs.Manufacturing.StartProduction(mo.ID)
	if err != nil {
		t.Fatalf("start production: %v", err)
	}
	if started.Status != entity.MOStatusInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", started.Status)
	}
	if started.ScheduleStart == nil {
		t.Error("expected schedule_start to be set")
	}
	if len(started.WorkOrders) != 2 {
		t.Fatalf("expected 2 work orders, got %d", len(started.WorkOrders))
	}
	for i, wo := range started.WorkOrders {
		if wo.Sequence != i {
			t.Errorf("work order %d: expected sequence %d, got %d", i, i, wo.Sequence)
		}
		if wo.Status != entity.WOStatusQueued {
			t.Errorf("work order %d: expected QUEUED, got %s", i, wo.Status)
		}
	}
	if started.WorkOrders[0].Name != "切割" || started.WorkOrders[0].PlannedMinutes != 30 {
		t.Errorf("unexpected first work order: %+v", started.WorkOrders[0])
	}
	if started.WorkOrders[1].Name != "装配" || started.WorkOrders[1].PlannedMinutes != 60 {
		t.Errorf("unexpected second work order: %+v", started.WorkOrders[1])
	}

	// 重复开工被拒绝
	if _, err := env.svcs.Manufacturing.StartProduction(mo.ID); KindOf(err) != KindInvalidTransition {
		t.Fatalf("expected invalid transition on double start, got %v", err)
	}
}

func TestMOUpdateQtyOnlyWhilePlanned(t *testing.T) {
	env := setupMOTest(t)
	mo := env.createMO(t, 10)

	updated, err := env.svcs.Manufacturing.Update(mo.ID, UpdateMORequest{QtyPlanned: floatPtr(20)})
	if err != nil {
		t.Fatalf("update planned MO: %v", err)
	}
	if updated.QtyPlanned != 20 {
		t.Errorf("expected qty 20, got %v", updated.QtyPlanned)
	}

	if _, err := env.svcs.Manufacturing.StartProduction(mo.ID); err != nil {
		t.Fatalf("start production: %v", err)
	}
	if _, err := env.svcs.Manufacturing.Update(mo.ID, UpdateMORequest{QtyPlanned: floatPtr(30)}); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error updating qty after start, got %v", err)
	}
	// 其他字段仍可改
	if _, err := env.svcs.Manufacturing.Update(mo.ID, UpdateMORequest{Priority: entity.PriorityHigh}); err != nil {
		t.Fatalf("update priority after start: %v", err)
	}
}

func TestMOCompleteRequiresAllWorkOrdersCompleted(t *testing.T) {
	env := setupMOTest(t)
	mo := env.createMO(t, 5)

	started, err := env.svcs.Manufacturing.StartProduction(mo.ID)
	if err != nil {
		t.Fatalf("start production: %v", err)
	}

	// 未开工的订单不能完工
	mo2 := env.createMO(t, 1)
	if _, err := env.svcs.Manufacturing.CompleteProduction(mo2.ID); KindOf(err) != KindInvalidTransition {
		t.Fatalf("expected invalid transition completing PLANNED order, got %v", err)
	}

	// 有工单被取消时，手动完工被拒绝：级联路径把取消视作终结，手动路径不认
	if _, err := env.svcs.WorkOrder.Cancel(started.WorkOrders[1].ID, "设备故障"); err != nil {
		t.Fatalf("cancel work order: %v", err)
	}
	if _, err := env.svcs.Manufacturing.CompleteProduction(mo.ID); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error with canceled work order, got %v", err)
	}
}

func TestMOCancelCascadesToWorkOrders(t *testing.T) {
	env := setupMOTest(t)
	mo := env.createMO(t, 5)

	started, err := env.svcs.Manufacturing.StartProduction(mo.ID)
	if err != nil {
		t.Fatalf("start production: %v", err)
	}

	// 第一道工序完工，第二道保持 QUEUED
	wo1 := started.WorkOrders[0]
	if _, err := env.svcs.WorkOrder.Start(wo1.ID, "op-001"); err != nil {
		t.Fatalf("start work order: %v", err)
	}
	if _, err := env.svcs.WorkOrder.Complete(wo1.ID, CompleteWorkOrderRequest{ActualMinutes: 25}); err != nil {
		t.Fatalf("complete work order: %v", err)
	}

	canceled, err := env.svcs.Manufacturing.CancelOrder(mo.ID, "客户退单")
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if canceled.Status != entity.MOStatusCanceled {
		t.Errorf("expected CANCELED, got %s", canceled.Status)
	}
	if canceled.Notes != "客户退单" {
		t.Errorf("expected reason in notes, got %q", canceled.Notes)
	}

	// 已完工的工单保留，未完工的被强制取消
	for _, wo := range canceled.WorkOrders {
		switch wo.ID {
		case wo1.ID:
			if wo.Status != entity.WOStatusCompleted {
				t.Errorf("expected completed work order to stay COMPLETED, got %s", wo.Status)
			}
		default:
			if wo.Status != entity.WOStatusCanceled {
				t.Errorf("expected pending work order to be CANCELED, got %s", wo.Status)
			}
		}
	}
}

func TestMOCancelDoneRejected(t *testing.T) {
	env := setupMOTest(t)
	mo := env.createMO(t, 2)

	started, err := env.svcs.Manufacturing.StartProduction(mo.ID)
	if err != nil {
		t.Fatalf("start production: %v", err)
	}
	for _, wo := range started.WorkOrders {
		if _, err := env.svcs.WorkOrder.Start(wo.ID, "op-001"); err != nil {
			t.Fatalf("start work order: %v", err)
		}
		if _, err := env.svcs.WorkOrder.Complete(wo.ID, CompleteWorkOrderRequest{ActualMinutes: 10}); err != nil {
			t.Fatalf("complete work order: %v", err)
		}
	}

	// 全部完工后订单已级联 DONE
	done, err := env.svcs.Manufacturing.GetByID(mo.ID)
	if err != nil {
		t.Fatalf("reload MO: %v", err)
	}
	if done.Status != entity.MOStatusDone {
		t.Fatalf("expected DONE after all work orders completed, got %s", done.Status)
	}

	if _, err := env.svcs.Manufacturing.CancelOrder(mo.ID, "too late"); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error canceling DONE order, got %v", err)
	}
}

func TestMODeleteGuard(t *testing.T) {
	env := setupMOTest(t)
	mo := env.createMO(t, 3)

	if _, err := env.svcs.Manufacturing.StartProduction(mo.ID); err != nil {
		t.Fatalf("start production: %v", err)
	}
	if err := env.svcs.Manufacturing.Delete(mo.ID); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error deleting IN_PROGRESS order, got %v", err)
	}

	if _, err := env.svcs.Manufacturing.CancelOrder(mo.ID, ""); err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if err := env.svcs.Manufacturing.Delete(mo.ID); err != nil {
		t.Fatalf("delete canceled order: %v", err)
	}
	if _, err := env.svcs.Manufacturing.GetByID(mo.ID); KindOf(err) != KindNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	// 工单随订单级联删除
	wos, total, err := env.svcs.WorkOrder.List(repository.WOListParams{MOID: mo.ID})
	if err != nil {
		t.Fatalf("list work orders: %v", err)
	}
	if total != 0 || len(wos) != 0 {
		t.Errorf("expected work orders to be deleted with order, got %d", total)
	}
}
