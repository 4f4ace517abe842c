package purge

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/synoprune/synoprune/internal/pathutil"
	"github.com/synoprune/synoprune/internal/synology"
)

// Remote is the task-deletion surface the orchestrator needs from the
// station layer.
type Remote interface {
	DeleteTasks(ctx context.Context, ids []string, forceComplete bool) ([]synology.DeleteResult, error)
}

// Orchestrator drives the two-phase purge: remote task deletion first,
// then removal of the downloaded files under the configured root.
// Remote deletion must fully settle before any local deletion starts;
// files are only removed for tasks confirmed deleted remotely.
type Orchestrator struct {
	remote Remote
	root   string
	log    zerolog.Logger
}

// NewOrchestrator returns an orchestrator deleting files under root.
func NewOrchestrator(remote Remote, root string, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		remote: remote,
		root:   root,
		log:    log.With().Str("component", "purge").Logger(),
	}
}

// Purge selects tasks against the budget and executes both deletion
// phases. Remote per-id failures are recorded and logged but do not
// abort the run; local deletion proceeds for the remotely-successful
// subset. With dryRun set, no remote or filesystem deletion happens
// and the result enumerates what would be removed.
func (o *Orchestrator) Purge(ctx context.Context, tasks []synology.Task, maxSizeGB float64, dryRun bool) (*Result, error) {
	selected := Select(tasks, maxSizeGB)

	result := &Result{
		RunID:     uuid.NewString(),
		Tasks:     selected,
		TotalSize: TotalSize(selected),
		DryRun:    dryRun,
	}
	log := o.log.With().Str("run", result.RunID).Logger()

	if len(selected) == 0 {
		result.Message = fmt.Sprintf("nothing to purge: retained size is within %.2f GB", maxSizeGB)
		log.Info().Float64("budgetGB", maxSizeGB).Msg("no tasks selected")
		return result, nil
	}

	log.Info().
		Int("tasks", len(selected)).
		Str("totalSize", humanize.Bytes(uint64(result.TotalSize))).
		Bool("dryRun", dryRun).
		Msg("purge set selected")

	if dryRun {
		result.Local = o.planPaths(selected, log)
		result.Message = fmt.Sprintf("[dry run] would purge %d tasks freeing %s",
			len(selected), humanize.Bytes(uint64(result.TotalSize)))
		return result, nil
	}

	// Phase 1: remote deletion, force_complete so in-progress tasks
	// are removable too.
	ids := make([]string, len(selected))
	for i, t := range selected {
		ids[i] = t.ID
	}
	deletions, err := o.remote.DeleteTasks(ctx, ids, true)
	if err != nil {
		return nil, fmt.Errorf("remote task deletion failed: %w", err)
	}
	result.Deletions = deletions

	byID := make(map[string]synology.Task, len(selected))
	for _, t := range selected {
		byID[t.ID] = t
	}

	var remoteOK []synology.Task
	for _, d := range deletions {
		if d.OK() {
			result.SuccessCount++
			if t, ok := byID[d.ID]; ok {
				remoteOK = append(remoteOK, t)
			}
			continue
		}
		result.FailedCount++
		log.Warn().Str("id", d.ID).Int("code", d.Error).Msg("remote deletion failed for task")
	}

	// Phase 2: local deletion for the remotely-confirmed subset only.
	result.Local = o.deleteLocal(remoteOK, log)

	if result.FailedCount == 0 {
		result.Message = fmt.Sprintf("purged %d tasks freeing %s",
			len(selected), humanize.Bytes(uint64(result.TotalSize)))
	} else {
		result.Message = fmt.Sprintf("partially purged: %d of %d tasks removed (%d failed), intended %s",
			result.SuccessCount, len(selected), result.FailedCount, humanize.Bytes(uint64(result.TotalSize)))
	}
	log.Info().Int("successful", result.SuccessCount).Int("failed", result.FailedCount).Msg("purge finished")
	return result, nil
}

// planPaths validates and records the paths a real run would remove.
func (o *Orchestrator) planPaths(tasks []synology.Task, log zerolog.Logger) []LocalDeletion {
	var planned []LocalDeletion
	for _, t := range tasks {
		path, err := o.localPath(t)
		if path == "" && err == nil {
			continue
		}
		planned = append(planned, LocalDeletion{TaskID: t.ID, Path: path, Err: err})
		log.Info().Str("id", t.ID).Str("path", path).Msg("would delete")
	}
	return planned
}

// deleteLocal removes each task's destination independently and
// concurrently. One failing removal never aborts or skips the others;
// every outcome is captured individually.
func (o *Orchestrator) deleteLocal(tasks []synology.Task, log zerolog.Logger) []LocalDeletion {
	type target struct {
		taskID string
		path   string
	}
	var targets []target
	var results []LocalDeletion

	for _, t := range tasks {
		path, err := o.localPath(t)
		if err != nil {
			results = append(results, LocalDeletion{TaskID: t.ID, Path: path, Err: err})
			log.Error().Err(err).Str("id", t.ID).Msg("refusing local deletion")
			continue
		}
		if path == "" {
			log.Warn().Str("id", t.ID).Msg("task reports no destination, skipping local deletion")
			continue
		}
		targets = append(targets, target{taskID: t.ID, path: path})
	}

	deleted := make([]LocalDeletion, len(targets))
	var wg sync.WaitGroup
	for i, tgt := range targets {
		wg.Add(1)
		go func(i int, tgt target) {
			defer wg.Done()
			err := os.RemoveAll(tgt.path)
			deleted[i] = LocalDeletion{TaskID: tgt.taskID, Path: tgt.path, Err: err}
			if err != nil {
				log.Error().Err(err).Str("path", tgt.path).Msg("local deletion failed")
			} else {
				log.Info().Str("path", tgt.path).Msg("deleted")
			}
		}(i, tgt)
	}
	wg.Wait()

	return append(results, deleted...)
}

// localPath joins the task's remote-reported destination under the
// configured root and validates it. Returns ("", nil) when the task
// carries no destination.
func (o *Orchestrator) localPath(t synology.Task) (string, error) {
	dest := t.Destination()
	if dest == "" {
		return "", nil
	}
	return pathutil.Join(o.root, dest)
}
