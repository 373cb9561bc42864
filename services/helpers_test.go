package services

import (
	"sync"

	"github.com/AliRajag51/bookstore-backend/utils"
)

type recordingNotifier struct {
	mu     sync.Mutex
	reject bool
	msgs   []utils.Message
}

func (n *recordingNotifier) Enqueue(msg utils.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.reject {
		return false
	}
	n.msgs = append(n.msgs, msg)
	return true
}

func (n *recordingNotifier) messages() []utils.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]utils.Message(nil), n.msgs...)
}

func floatPtr(f float64) *float64 {
	return &f
}
