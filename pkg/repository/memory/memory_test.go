package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/payops-lab/mtnavigator/pkg/domain/interfaces"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"github.com/payops-lab/mtnavigator/pkg/repository/memory"
)

func TestMessageRepository(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	t.Run("create assigns sequential IDs", func(t *testing.T) {
		first, err := repo.Message().Create(ctx, &model.Message{WireID: "MT-1", Content: "a"})
		gt.NoError(t, err).Required()
		second, err := repo.Message().Create(ctx, &model.Message{WireID: "MT-2", Content: "b"})
		gt.NoError(t, err).Required()

		gt.Number(t, int64(first.ID)).Equal(1)
		gt.Number(t, int64(second.ID)).Equal(2)
		gt.Value(t, first.CreatedAt.IsZero()).Equal(false)
	})

	t.Run("get by ID and wire ID", func(t *testing.T) {
		msg, err := repo.Message().Get(ctx, types.MessageID(1))
		gt.NoError(t, err).Required()
		gt.Value(t, msg.WireID).Equal("MT-1")

		byWire, err := repo.Message().GetByWireID(ctx, "MT-2")
		gt.NoError(t, err).Required()
		gt.Value(t, byWire.Content).Equal("b")
	})

	t.Run("missing message returns not found", func(t *testing.T) {
		_, err := repo.Message().Get(ctx, types.MessageID(999))
		gt.Error(t, err)
		gt.Value(t, errors.Is(err, memory.ErrNotFound)).Equal(true)

		_, err = repo.Message().GetByWireID(ctx, "MT-MISSING")
		gt.Error(t, err)
		gt.Value(t, errors.Is(err, memory.ErrNotFound)).Equal(true)
	})

	t.Run("stored records are isolated from caller mutation", func(t *testing.T) {
		created, err := repo.Message().Create(ctx, &model.Message{
			WireID:     "MT-ISO",
			Attributes: map[string]string{"sender": "BANKUS33"},
		})
		gt.NoError(t, err).Required()

		created.Attributes["sender"] = "mutated"

		stored, err := repo.Message().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Attributes["sender"]).Equal("BANKUS33")
	})
}

func TestInvestigationRepository(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, repo interfaces.Repository, ref string, status types.InvestigationStatus, priority types.Priority) *model.Investigation {
		t.Helper()
		inv, err := repo.Investigation().Create(ctx, &model.Investigation{
			ReferenceNumber: ref,
			MessageID:       types.MessageID(1),
			Status:          status,
			Priority:        priority,
		})
		gt.NoError(t, err).Required()
		return inv
	}

	t.Run("duplicate reference is rejected", func(t *testing.T) {
		repo := memory.New()
		seed(t, repo, "INV-20260829-AAAA", types.InvestigationStatusOpen, types.PriorityHigh)

		_, err := repo.Investigation().Create(ctx, &model.Investigation{
			ReferenceNumber: "INV-20260829-AAAA",
		})
		gt.Error(t, err)
		gt.Value(t, errors.Is(err, memory.ErrConflict)).Equal(true)
	})

	t.Run("update preserves the reference number", func(t *testing.T) {
		repo := memory.New()
		inv := seed(t, repo, "INV-20260829-BBBB", types.InvestigationStatusOpen, types.PriorityHigh)

		inv.ReferenceNumber = "INV-20260829-ZZZZ"
		inv.Status = types.InvestigationStatusInProgress
		updated, err := repo.Investigation().Update(ctx, inv)
		gt.NoError(t, err).Required()

		gt.Value(t, updated.ReferenceNumber).Equal("INV-20260829-BBBB")
		gt.Value(t, updated.Status).Equal(types.InvestigationStatusInProgress)
		gt.Value(t, updated.UpdatedAt.Before(inv.UpdatedAt)).Equal(false)
	})

	t.Run("list filters, sorts by update time, and paginates", func(t *testing.T) {
		repo := memory.New()
		first := seed(t, repo, "INV-20260829-0001", types.InvestigationStatusOpen, types.PriorityHigh)
		seed(t, repo, "INV-20260829-0002", types.InvestigationStatusOpen, types.PriorityLow)
		seed(t, repo, "INV-20260829-0003", types.InvestigationStatusClosed, types.PriorityHigh)

		// Touch the oldest entry so it surfaces first
		time.Sleep(2 * time.Millisecond)
		_, err := repo.Investigation().Update(ctx, first)
		gt.NoError(t, err).Required()

		all, total, err := repo.Investigation().List(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, total).Equal(3)
		gt.Number(t, len(all)).Equal(3)
		gt.Value(t, all[0].ReferenceNumber).Equal("INV-20260829-0001")

		open, total, err := repo.Investigation().List(ctx, interfaces.WithStatus(types.InvestigationStatusOpen))
		gt.NoError(t, err).Required()
		gt.Number(t, total).Equal(2)
		gt.Number(t, len(open)).Equal(2)

		page, total, err := repo.Investigation().List(ctx,
			interfaces.WithPriority(types.PriorityHigh),
			interfaces.WithPage(1, 1))
		gt.NoError(t, err).Required()
		gt.Number(t, total).Equal(2)
		gt.Number(t, len(page)).Equal(1)

		beyond, total, err := repo.Investigation().List(ctx, interfaces.WithPage(10, 100))
		gt.NoError(t, err).Required()
		gt.Number(t, total).Equal(3)
		gt.Number(t, len(beyond)).Equal(0)
	})

	t.Run("delete frees the reference number", func(t *testing.T) {
		repo := memory.New()
		inv := seed(t, repo, "INV-20260829-CCCC", types.InvestigationStatusOpen, types.PriorityLow)

		gt.NoError(t, repo.Investigation().Delete(ctx, inv.ID)).Required()

		_, err := repo.Investigation().Get(ctx, inv.ID)
		gt.Error(t, err)
		gt.Value(t, errors.Is(err, memory.ErrNotFound)).Equal(true)

		// Reference can be reused after delete
		seed(t, repo, "INV-20260829-CCCC", types.InvestigationStatusOpen, types.PriorityLow)
	})

	t.Run("counts and resolved listing", func(t *testing.T) {
		repo := memory.New()
		seed(t, repo, "INV-20260829-DDD1", types.InvestigationStatusOpen, types.PriorityHigh)
		seed(t, repo, "INV-20260829-DDD2", types.InvestigationStatusOpen, types.PriorityMedium)
		resolved := seed(t, repo, "INV-20260829-DDD3", types.InvestigationStatusResolved, types.PriorityHigh)

		now := time.Now().UTC()
		resolved.ResolvedAt = &now
		_, err := repo.Investigation().Update(ctx, resolved)
		gt.NoError(t, err).Required()

		statusCounts, err := repo.Investigation().CountByStatus(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, statusCounts[types.InvestigationStatusOpen]).Equal(2)
		gt.Number(t, statusCounts[types.InvestigationStatusResolved]).Equal(1)

		priorityCounts, err := repo.Investigation().CountByPriority(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, priorityCounts[types.PriorityHigh]).Equal(2)

		resolvedList, err := repo.Investigation().ListResolved(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, len(resolvedList)).Equal(1)
		gt.Value(t, resolvedList[0].ReferenceNumber).Equal("INV-20260829-DDD3")
	})
}

func TestActionRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	invID := types.InvestigationID(7)

	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	for i, actionType := range []string{"information_request", "amendment_request", "information_request"} {
		_, err := repo.Action().Create(ctx, &model.Action{
			InvestigationID: invID,
			ActionType:      actionType,
			Status:          types.ActionStatusPending,
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		})
		gt.NoError(t, err).Required()
	}
	other, err := repo.Action().Create(ctx, &model.Action{
		InvestigationID: types.InvestigationID(8),
		ActionType:      "other",
		Status:          types.ActionStatusPending,
	})
	gt.NoError(t, err).Required()

	t.Run("list orders by creation time", func(t *testing.T) {
		actions, err := repo.Action().ListByInvestigation(ctx, invID)
		gt.NoError(t, err).Required()
		gt.Number(t, len(actions)).Equal(3)
		gt.Value(t, actions[0].CreatedAt.Equal(base)).Equal(true)
		gt.Value(t, actions[2].ActionType).Equal("information_request")
	})

	t.Run("update rejects missing action", func(t *testing.T) {
		_, err := repo.Action().Update(ctx, &model.Action{ID: types.ActionID(999)})
		gt.Error(t, err)
		gt.Value(t, errors.Is(err, memory.ErrNotFound)).Equal(true)
	})

	t.Run("count by type spans investigations", func(t *testing.T) {
		counts, err := repo.Action().CountByType(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, counts["information_request"]).Equal(2)
		gt.Number(t, counts["amendment_request"]).Equal(1)
		gt.Number(t, counts["other"]).Equal(1)
	})

	t.Run("delete by investigation leaves others intact", func(t *testing.T) {
		gt.NoError(t, repo.Action().DeleteByInvestigation(ctx, invID)).Required()

		actions, err := repo.Action().ListByInvestigation(ctx, invID)
		gt.NoError(t, err).Required()
		gt.Number(t, len(actions)).Equal(0)

		kept, err := repo.Action().Get(ctx, other.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, kept.ActionType).Equal("other")
	})
}
