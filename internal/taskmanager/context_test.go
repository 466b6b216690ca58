package taskmanager

import (
	"sync"
	"testing"
)

func TestSharedContext_SetGet(t *testing.T) {
	sc := NewSharedContext()

	if _, ok := sc.Get("cluster_id"); ok {
		t.Error("expected missing key")
	}

	sc.Set("cluster_id", "c-1")
	sc.Set("attempts", 2)

	if v, ok := sc.GetString("cluster_id"); !ok || v != "c-1" {
		t.Errorf("GetString(cluster_id) = %q, %v", v, ok)
	}
	if _, ok := sc.GetString("attempts"); ok {
		t.Error("GetString should reject non-string values")
	}
	if v, ok := sc.Get("attempts"); !ok || v.(int) != 2 {
		t.Errorf("Get(attempts) = %v, %v", v, ok)
	}
}

func TestSharedContext_Concurrent(t *testing.T) {
	sc := NewSharedContext()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			sc.Set("key", i)
		}(i)
		go func() {
			defer wg.Done()
			sc.Get("key")
		}()
	}
	wg.Wait()

	if _, ok := sc.Get("key"); !ok {
		t.Error("expected key to be set")
	}
}
