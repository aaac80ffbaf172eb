package catalog

import "time"

// NewTestSyncer builds a Syncer with small pages and near-zero retry delays
// so paging and retry tests run fast.
func NewTestSyncer(source Source, store Store, pageSize int) *Syncer {
	return &Syncer{
		source:     source,
		store:      store,
		pageSize:   pageSize,
		retryDelay: time.Millisecond,
		retryCap:   time.Millisecond,
	}
}
