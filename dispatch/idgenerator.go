package dispatch

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator issues IDs for events.
type IDGenerator interface {
	Generate() string
}

var idGeneratorMutex sync.Mutex
var idGenerator IDGenerator

// UseSequentialIDGenerator makes events carry small sequential IDs. IDs stay
// deterministic across runs as long as events are created in the same order.
func UseSequentialIDGenerator() {
	setIDGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator makes events carry globally unique IDs that are safe
// to generate from multiple goroutines. The IDs are not deterministic
// anymore.
func UseParallelIDGenerator() {
	setIDGenerator(parallelIDGenerator{})
}

func setIDGenerator(g IDGenerator) {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGenerator != nil {
		log.Panic("cannot change id generator type after using it")
	}

	idGenerator = g
}

// GetIDGenerator returns the ID generator in use, defaulting to the
// sequential generator.
func GetIDGenerator() IDGenerator {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGenerator == nil {
		idGenerator = &sequentialIDGenerator{}
	}

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.nextID, 1), 10)
}

type parallelIDGenerator struct{}

func (parallelIDGenerator) Generate() string {
	return xid.New().String()
}
