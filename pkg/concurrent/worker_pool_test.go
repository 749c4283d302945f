package concurrent

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool(t *testing.T) {
	wp := NewWorkerPool[int, int](4, 100)
	for i := 0; i < 100; i++ {
		wp.AddJob(i)
	}
	wp.Close()
	wp.Start(func(job int) int { return job * job })
	wp.Wait()

	got := make([]int, 0, 100)
	for r := range wp.CollectResults() {
		got = append(got, r)
	}
	sort.Ints(got)

	assert.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i*i, v)
	}
}

func TestWorkerPoolStopRange(t *testing.T) {
	wp := NewWorkerPool[StopRangeJobItem, int](0, 3)
	wp.AddJob(StopRangeJobItem{0, 10})
	wp.AddJob(StopRangeJobItem{10, 25})
	wp.AddJob(StopRangeJobItem{25, 26})
	wp.Close()
	wp.Start(func(job StopRangeJobItem) int { return job.To - job.From })
	wp.Wait()

	sum := 0
	for r := range wp.CollectResults() {
		sum += r
	}
	assert.Equal(t, 26, sum)
}
