// Package ordering owns the structural invariant of a project: the
// sort orders of its N chapters are exactly {0 .. N-1}, unique and
// dense. Every structural mutation (insert, delete, move, bulk
// reorder) goes through the Engine, which serializes mutations per
// project and repairs the sequence if a collision ever appears.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/htmltext"
)

// Engine performs structural mutations on a project's chapter sequence.
type Engine struct {
	chapters  repositories.ChapterRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger

	locks sync.Map // projectID -> *sync.Mutex
}

// NewEngine creates a new ordering engine
func NewEngine(chapters repositories.ChapterRepository, txManager repositories.TransactionManager, logger *slog.Logger) *Engine {
	return &Engine{
		chapters:  chapters,
		txManager: txManager,
		logger:    logger,
	}
}

func (e *Engine) projectLock(projectID string) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(projectID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// mutate runs fn inside a transaction while holding the project's
// mutation lock. After fn succeeds the sequence is checked for
// collisions and repaired in the same transaction. A mutation that
// fails with ErrOrderCollision (a store-level unique violation) is
// retried after an out-of-band normalization, at most MaxReorderRetries
// times.
func (e *Engine) mutate(ctx context.Context, projectID string, fn repositories.TxFn) error {
	mu := e.projectLock(projectID)
	mu.Lock()
	defer mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= config.MaxReorderRetries; attempt++ {
		err := e.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			if err := fn(txCtx); err != nil {
				return err
			}
			collides, err := e.chapters.HasOrderCollision(txCtx, projectID)
			if err != nil {
				return err
			}
			if collides {
				e.logger.Warn("order collision after mutation, normalizing", "project_id", projectID)
				return e.chapters.NormalizeOrders(txCtx, projectID)
			}
			return nil
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrOrderCollision) {
			return err
		}
		lastErr = err
		e.logger.Warn("order collision, retrying after normalize",
			"project_id", projectID,
			"attempt", attempt+1,
		)
		if normErr := e.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			return e.chapters.NormalizeOrders(txCtx, projectID)
		}); normErr != nil {
			return fmt.Errorf("normalize after collision: %w", normErr)
		}
	}
	return lastErr
}

// InsertAt inserts a chapter at the given position in [0, N]; chapters
// at or after the position shift up by one.
func (e *Engine) InsertAt(ctx context.Context, chapter *models.Chapter, position int) error {
	return e.mutate(ctx, chapter.ProjectID, func(txCtx context.Context) error {
		count, err := e.chapters.Count(txCtx, chapter.ProjectID)
		if err != nil {
			return err
		}
		if position < 0 || position > count {
			return fmt.Errorf("%w: %d not in [0, %d]", domain.ErrInvalidPosition, position, count)
		}

		if position < count {
			if err := e.chapters.ShiftOrdersFrom(txCtx, chapter.ProjectID, position, 1); err != nil {
				return err
			}
		}

		chapter.Order = position
		return e.chapters.Create(txCtx, chapter)
	})
}

// Append inserts a chapter at the end of the sequence.
func (e *Engine) Append(ctx context.Context, chapter *models.Chapter) error {
	return e.mutate(ctx, chapter.ProjectID, func(txCtx context.Context) error {
		count, err := e.chapters.Count(txCtx, chapter.ProjectID)
		if err != nil {
			return err
		}
		chapter.Order = count
		return e.chapters.Create(txCtx, chapter)
	})
}

// InsertAfter inserts a chapter directly after an existing one.
func (e *Engine) InsertAfter(ctx context.Context, afterID string, chapter *models.Chapter) error {
	return e.mutate(ctx, chapter.ProjectID, func(txCtx context.Context) error {
		after, err := e.chapters.GetByID(txCtx, afterID, chapter.ProjectID)
		if err != nil {
			return err
		}
		if err := e.chapters.ShiftOrdersAbove(txCtx, chapter.ProjectID, after.Order, 1); err != nil {
			return err
		}
		chapter.Order = after.Order + 1
		return e.chapters.Create(txCtx, chapter)
	})
}

// Delete removes a chapter and closes the gap it leaves, so the
// remaining orders stay dense.
func (e *Engine) Delete(ctx context.Context, projectID, chapterID string) error {
	return e.mutate(ctx, projectID, func(txCtx context.Context) error {
		chapter, err := e.chapters.GetByID(txCtx, chapterID, projectID)
		if err != nil {
			return err
		}
		if err := e.chapters.Delete(txCtx, chapterID, projectID); err != nil {
			return err
		}
		return e.chapters.ShiftOrdersAbove(txCtx, projectID, chapter.Order, -1)
	})
}

// Move relocates a chapter to a new position in [0, N-1]; chapters
// between the old and new position shift by one to fill the gap.
// Moving to the current position is a no-op.
func (e *Engine) Move(ctx context.Context, projectID, chapterID string, position int) error {
	return e.mutate(ctx, projectID, func(txCtx context.Context) error {
		chapter, err := e.chapters.GetByID(txCtx, chapterID, projectID)
		if err != nil {
			return err
		}
		count, err := e.chapters.Count(txCtx, projectID)
		if err != nil {
			return err
		}
		if position < 0 || position > count-1 {
			return fmt.Errorf("%w: %d not in [0, %d]", domain.ErrInvalidPosition, position, count-1)
		}

		switch {
		case position == chapter.Order:
			return nil
		case position > chapter.Order:
			// Everything between the old slot and the target slides down
			if err := e.chapters.ShiftOrderRange(txCtx, projectID, chapter.Order+1, position, -1); err != nil {
				return err
			}
		default:
			// Everything between the target and the old slot slides up
			if err := e.chapters.ShiftOrderRange(txCtx, projectID, position, chapter.Order-1, 1); err != nil {
				return err
			}
		}

		return e.chapters.SetOrder(txCtx, chapterID, projectID, position)
	})
}

// Reorder applies a complete new sequence. The ids must be exactly the
// project's chapter ids, each once; anything else fails with
// ErrValidation and changes nothing.
func (e *Engine) Reorder(ctx context.Context, projectID string, orderedIDs []string) error {
	return e.mutate(ctx, projectID, func(txCtx context.Context) error {
		existing, err := e.chapters.ListMeta(txCtx, projectID)
		if err != nil {
			return err
		}
		if len(orderedIDs) != len(existing) {
			return fmt.Errorf("%w: expected %d chapter ids, got %d", domain.ErrValidation, len(existing), len(orderedIDs))
		}

		known := make(map[string]int, len(existing))
		for _, c := range existing {
			known[c.ID] = c.Order
		}

		seen := make(map[string]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("chapter %s: %w", id, domain.ErrNotInProject)
			}
			if seen[id] {
				return fmt.Errorf("%w: duplicate chapter id %s", domain.ErrValidation, id)
			}
			seen[id] = true
		}

		for pos, id := range orderedIDs {
			if known[id] == pos {
				continue
			}
			if err := e.chapters.SetOrder(txCtx, id, projectID, pos); err != nil {
				return err
			}
		}
		return nil
	})
}

// Normalize rewrites the sequence to {0..N-1}, preserving the current
// (order, id) sort. Safe to call on an already-dense sequence.
func (e *Engine) Normalize(ctx context.Context, projectID string) error {
	mu := e.projectLock(projectID)
	mu.Lock()
	defer mu.Unlock()

	return e.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return e.chapters.NormalizeOrders(txCtx, projectID)
	})
}

// Sequence returns the project's chapters in order, without content.
func (e *Engine) Sequence(ctx context.Context, projectID string) ([]models.ChapterSummary, error) {
	chapters, err := e.chapters.ListMeta(ctx, projectID)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.ChapterSummary, len(chapters))
	for i, c := range chapters {
		summaries[i] = c.Summary()
	}
	return summaries, nil
}

// Split cuts a chapter's content at a byte offset: the original keeps
// content[:cut] and its order, a new chapter takes content[cut:] at
// order+1. Atomic; cut 0 empties the original.
func (e *Engine) Split(ctx context.Context, projectID, chapterID string, cut int, newChapter *models.Chapter) error {
	return e.mutate(ctx, projectID, func(txCtx context.Context) error {
		source, err := e.chapters.GetByID(txCtx, chapterID, projectID)
		if err != nil {
			return err
		}
		if cut < 0 || cut > len(source.Content) {
			return fmt.Errorf("%w: cut offset %d not in [0, %d]", domain.ErrInvalidPosition, cut, len(source.Content))
		}
		newChapter.Content = source.Content[cut:]
		return e.splitInto(txCtx, source, source.Content[:cut], newChapter)
	})
}

// SplitInto rewrites a chapter's content and inserts a sibling directly
// after it, atomically. The caller supplies both bodies; word counts
// are refreshed here.
func (e *Engine) SplitInto(ctx context.Context, projectID, chapterID, sourceContent string, newChapter *models.Chapter) error {
	return e.mutate(ctx, projectID, func(txCtx context.Context) error {
		source, err := e.chapters.GetByID(txCtx, chapterID, projectID)
		if err != nil {
			return err
		}
		return e.splitInto(txCtx, source, sourceContent, newChapter)
	})
}

func (e *Engine) splitInto(txCtx context.Context, source *models.Chapter, sourceContent string, newChapter *models.Chapter) error {
	source.Content = sourceContent
	source.WordCount = htmltext.CountWords(sourceContent)
	source.UpdatedAt = time.Now()
	if err := e.chapters.Update(txCtx, source); err != nil {
		return err
	}

	if err := e.chapters.ShiftOrdersAbove(txCtx, source.ProjectID, source.Order, 1); err != nil {
		return err
	}
	newChapter.ProjectID = source.ProjectID
	newChapter.WordCount = htmltext.CountWords(newChapter.Content)
	newChapter.Order = source.Order + 1
	return e.chapters.Create(txCtx, newChapter)
}

// Extract creates a new chapter at source.order+1 holding the selected
// text. When removeFromSource is set, the first literal occurrence of
// the selection is removed from the source content.
func (e *Engine) Extract(ctx context.Context, projectID, chapterID, selectedText string, newChapter *models.Chapter, removeFromSource bool) error {
	return e.mutate(ctx, projectID, func(txCtx context.Context) error {
		source, err := e.chapters.GetByID(txCtx, chapterID, projectID)
		if err != nil {
			return err
		}

		if removeFromSource {
			if idx := strings.Index(source.Content, selectedText); idx >= 0 {
				source.Content = source.Content[:idx] + source.Content[idx+len(selectedText):]
				source.WordCount = htmltext.CountWords(source.Content)
				source.UpdatedAt = time.Now()
				if err := e.chapters.Update(txCtx, source); err != nil {
					return err
				}
			}
		}

		newChapter.ProjectID = projectID
		newChapter.Content = selectedText
		newChapter.WordCount = htmltext.CountWords(selectedText)
		if err := e.chapters.ShiftOrdersAbove(txCtx, projectID, source.Order, 1); err != nil {
			return err
		}
		newChapter.Order = source.Order + 1
		return e.chapters.Create(txCtx, newChapter)
	})
}
