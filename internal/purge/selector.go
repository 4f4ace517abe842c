// Package purge implements the storage-reclamation policy: ordering
// tasks by retention value, selecting a purge set against a size
// budget, and driving the two-phase (remote then local) deletion.
package purge

import (
	"sort"

	"github.com/synoprune/synoprune/internal/synology"
)

// bytesPerGB uses decimal/SI units on purpose, matching how storage
// vendors label capacity.
const bytesPerGB = 1_000_000_000

// Sort returns a new slice ordered ascending by uploaded bytes, ties
// broken ascending by completion time: least upload contribution
// first, oldest completed first among equals. The input is not
// mutated.
func Sort(tasks []synology.Task) []synology.Task {
	sorted := make([]synology.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		ui, uj := sorted[i].SizeUploaded(), sorted[j].SizeUploaded()
		if ui != uj {
			return ui < uj
		}
		return sorted[i].CompletedTime() < sorted[j].CompletedTime()
	})
	return sorted
}

// Select returns the ordered purge set for the given budget in SI
// gigabytes. It walks the sorted list accumulating task sizes,
// including each task and stopping the first time the running total
// strictly exceeds the budget. An exact-equal total does not stop the
// walk at the task that reached it; this boundary is load-bearing for
// callers and must not change. A non-positive budget selects nothing.
func Select(tasks []synology.Task, maxSizeGB float64) []synology.Task {
	budget := maxSizeGB * bytesPerGB
	if budget <= 0 || len(tasks) == 0 {
		return nil
	}

	sorted := Sort(tasks)
	selected := make([]synology.Task, 0, len(sorted))
	var total int64
	for _, t := range sorted {
		total += t.Size
		selected = append(selected, t)
		if float64(total) > budget {
			break
		}
	}
	return selected
}

// TotalSize sums the sizes of the given tasks.
func TotalSize(tasks []synology.Task) int64 {
	var total int64
	for _, t := range tasks {
		total += t.Size
	}
	return total
}
