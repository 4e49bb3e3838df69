package service

import (
	"sync"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// startedMO 创建并开工一个制造订单，返回其工单
func startedMO(t *testing.T, env *moTestEnv) *entity.ManufacturingOrder {
	t.Helper()
	mo := env.createMO(t, 5)
	started, err := env.svcs.Manufacturing.StartProduction(mo.ID)
	if err != nil {
		t.Fatalf("start production: %v", err)
	}
	return started
}

func TestWorkOrderLifecycle(t *testing.T) {
	env := setupMOTest(t)
	mo := startedMO(t, env)
	woID := mo.WorkOrders[0].ID

	// 开工
	wo, err := env.svcs.WorkOrder.Start(woID, "op-007")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if wo.Status != entity.WOStatusStarted {
		t.Errorf("expected STARTED, got %s", wo.Status)
	}
	if wo.OperatorID != "op-007" {
		t.Errorf("expected operator op-007, got %s", wo.OperatorID)
	}
	if wo.StartedAt == nil {
		t.Fatal("expected started_at to be set on first start")
	}
	firstStart := *wo.StartedAt

	// 暂停
	wo, err = env.svcs.WorkOrder.Pause(woID, "换班")
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if wo.Status != entity.WOStatusPaused {
		t.Errorf("expected PAUSED, got %s", wo.Status)
	}
	if wo.Comments != "换班" {
		t.Errorf("expected pause comment, got %q", wo.Comments)
	}

	// 恢复开工不会重置 started_at
	wo, err = env.svcs.WorkOrder.Start(woID, "op-007")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if wo.StartedAt == nil || !wo.StartedAt.Equal(firstStart) {
		t.Errorf("expected started_at to be preserved on resume, got %v want %v", wo.StartedAt, firstStart)
	}

	// 完工
	wo, err = env.svcs.WorkOrder.Complete(woID, CompleteWorkOrderRequest{ActualMinutes: 42, Comments: "正常完工"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if wo.Status != entity.WOStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", wo.Status)
	}
	if wo.ActualMinutes != 42 {
		t.Errorf("expected actual minutes 42, got %d", wo.ActualMinutes)
	}
	if wo.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
	if wo.Comments != "换班\n正常完工" {
		t.Errorf("unexpected comments: %q", wo.Comments)
	}
}

func TestWorkOrderInvalidTransitions(t *testing.T) {
	env := setupMOTest(t)
	mo := startedMO(t, env)
	woID := mo.WorkOrders[0].ID

	// QUEUED 不能直接完工或暂停
	if _, err := env.svcs.WorkOrder.Complete(woID, CompleteWorkOrderRequest{ActualMinutes: 1}); KindOf(err) != KindInvalidTransition {
		t.Fatalf("expected invalid transition completing QUEUED, got %v", err)
	}
	if _, err := env.svcs.WorkOrder.Pause(woID, ""); KindOf(err) != KindInvalidTransition {
		t.Fatalf("expected invalid transition pausing QUEUED, got %v", err)
	}

	// 终态不能再流转
	if _, err := env.svcs.WorkOrder.Cancel(woID, "不做了"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := env.svcs.WorkOrder.Start(woID, "op-001"); KindOf(err) != KindInvalidTransition {
		t.Fatalf("expected invalid transition starting CANCELED, got %v", err)
	}
}

func TestWorkOrderDeleteGuard(t *testing.T) {
	env := setupMOTest(t)
	mo := startedMO(t, env)
	wo1, wo2 := mo.WorkOrders[0], mo.WorkOrders[1]

	if _, err := env.svcs.WorkOrder.Start(wo1.ID, "op-001"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := env.svcs.WorkOrder.Delete(wo1.ID); KindOf(err) != KindInvalidState {
		t.Fatalf("expected invalid state deleting STARTED work order, got %v", err)
	}

	if err := env.svcs.WorkOrder.Delete(wo2.ID); err != nil {
		t.Fatalf("delete QUEUED work order: %v", err)
	}
	if _, err := env.svcs.WorkOrder.GetByID(wo2.ID); KindOf(err) != KindNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestWorkOrderCascadeCompletesOrder(t *testing.T) {
	env := setupMOTest(t)
	mo := startedMO(t, env)

	// 完成第一张后订单仍在生产中
	if _, err := env.svcs.WorkOrder.Start(mo.WorkOrders[0].ID, "op-001"); err != nil {
		t.Fatalf("start wo1: %v", err)
	}
	if _, err := env.svcs.WorkOrder.Complete(mo.WorkOrders[0].ID, CompleteWorkOrderRequest{ActualMinutes: 20}); err != nil {
		t.Fatalf("complete wo1: %v", err)
	}
	cur, err := env.svcs.Manufacturing.GetByID(mo.ID)
	if err != nil {
		t.Fatalf("reload MO: %v", err)
	}
	if cur.Status != entity.MOStatusInProgress {
		t.Fatalf("expected IN_PROGRESS with one work order pending, got %s", cur.Status)
	}

	// 取消最后一张工单不触发级联检查，订单保持生产中
	if _, err := env.svcs.WorkOrder.Cancel(mo.WorkOrders[1].ID, "工序合并"); err != nil {
		t.Fatalf("cancel wo2: %v", err)
	}
	cur, err = env.svcs.Manufacturing.GetByID(mo.ID)
	if err != nil {
		t.Fatalf("reload MO: %v", err)
	}
	if cur.Status != entity.MOStatusInProgress {
		t.Fatalf("cancel must not cascade-complete the order, got %s", cur.Status)
	}
}

func TestWorkOrderConcurrentCompleteFiresCascadeOnce(t *testing.T) {
	env := setupMOTest(t)
	mo := startedMO(t, env)

	// 把两张工单都推进到 STARTED
	for _, wo := range mo.WorkOrders {
		if _, err := env.svcs.WorkOrder.Start(wo.ID, "op-001"); err != nil {
			t.Fatalf("start: %v", err)
		}
	}
	// 先完成第一张，让第二张成为最后一张
	if _, err := env.svcs.WorkOrder.Complete(mo.WorkOrders[0].ID, CompleteWorkOrderRequest{ActualMinutes: 15}); err != nil {
		t.Fatalf("complete wo1: %v", err)
	}

	// 并发完工最后一张，条件更新保证只有一个请求成功
	lastID := mo.WorkOrders[1].ID
	const workers = 8
	var wg sync.WaitGroup
	successes := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.svcs.WorkOrder.Complete(lastID, CompleteWorkOrderRequest{ActualMinutes: 30}); err == nil {
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
	if won != 1 {
		t.Errorf("expected exactly 1 concurrent complete to win, got %d", won)
	}

	cur, err := env.svcs.Manufacturing.GetByID(mo.ID)
	if err != nil {
		t.Fatalf("reload MO: %v", err)
	}
	if cur.Status != entity.MOStatusDone {
		t.Errorf("expected order DONE after last work order completed, got %s", cur.Status)
	}
	if cur.ScheduleEnd == nil {
		t.Error("expected schedule_end to be set by cascade")
	}
}
