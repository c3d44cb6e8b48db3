// Package testutil provides in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/glasswatch/glasswatch/internal/remote"
)

// ErrRemoteDown is the failure injected by FakeRemote when configured.
var ErrRemoteDown = errors.New("remote down")

// FakeRemote is an in-memory remote store and change feed.
//
// Failure injection:
//   - FailSnapshot makes Snapshot return ErrRemoteDown.
//   - FailPut[id] makes Put fail for that id only, so per-record push
//     isolation can be asserted.
type FakeRemote struct {
	mu           sync.Mutex
	docs         map[string]remote.Document
	FailSnapshot bool
	FailPut      map[string]bool
	PutCalls     int

	subs []chan remote.Document
}

// NewFakeRemote creates an empty fake remote.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		docs:    make(map[string]remote.Document),
		FailPut: make(map[string]bool),
	}
}

// Seed stores documents remotely without going through Put.
func (f *FakeRemote) Seed(docs ...remote.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		f.docs[d.ID] = d
	}
}

// Doc returns the stored document and whether it exists.
func (f *FakeRemote) Doc(id string) (remote.Document, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	return d, ok
}

// Snapshot implements remote.Store.
func (f *FakeRemote) Snapshot(ctx context.Context) ([]remote.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailSnapshot {
		return nil, ErrRemoteDown
	}
	out := make([]remote.Document, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, d)
	}
	return out, nil
}

// Put implements remote.Store.
func (f *FakeRemote) Put(ctx context.Context, doc remote.Document) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.PutCalls++
	if f.FailPut[doc.ID] {
		return "", ErrRemoteDown
	}
	f.docs[doc.ID] = doc
	return "hazards/" + doc.ID, nil
}

// Subscribe implements remote.Feed.
func (f *FakeRemote) Subscribe(ctx context.Context) (*remote.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan remote.Document, 16)
	f.subs = append(f.subs, ch)

	var once sync.Once
	return remote.NewSubscription(ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, sub := range f.subs {
				if sub == ch {
					f.subs = append(f.subs[:i], f.subs[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}), nil
}

// Publish delivers a change notification to every live subscriber.
func (f *FakeRemote) Publish(doc remote.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		ch <- doc
	}
}
