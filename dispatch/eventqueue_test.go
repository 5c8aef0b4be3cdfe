package dispatch

import (
	"fmt"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventQueueImpl", func() {
	var queue *EventQueueImpl

	BeforeEach(func() {
		queue = NewEventQueue()
	})

	It("should pop in order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			queue.Push(Event{PriorityLevel: rand.Intn(20)})
		}

		level := queue.Pop().PriorityLevel
		for i := 1; i < numEvents; i++ {
			evt := queue.Pop()
			Expect(evt.PriorityLevel <= level).To(BeTrue())
			level = evt.PriorityLevel
		}
	})

	It("should pop equal levels first-in first-out", func() {
		queue.Push(Event{ID: "low", PriorityLevel: 1})
		for i := 0; i < 10; i++ {
			queue.Push(Event{
				ID:            fmt.Sprintf("evt-%d", i),
				PriorityLevel: 5,
			})
		}

		for i := 0; i < 10; i++ {
			Expect(queue.Pop().ID).To(Equal(fmt.Sprintf("evt-%d", i)))
		}
		Expect(queue.Pop().ID).To(Equal("low"))
	})

	It("should peek without removing", func() {
		queue.Push(Event{ID: "a", PriorityLevel: 3})
		queue.Push(Event{ID: "b", PriorityLevel: 7})

		Expect(queue.Peek().ID).To(Equal("b"))
		Expect(queue.Len()).To(Equal(2))
	})
})

var _ = Describe("InsertionQueue", func() {
	var queue *InsertionQueue

	BeforeEach(func() {
		queue = NewInsertionQueue()
	})

	It("should pop in order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			queue.Push(Event{PriorityLevel: rand.Intn(20)})
		}

		level := queue.Pop().PriorityLevel
		for i := 1; i < numEvents; i++ {
			evt := queue.Pop()
			Expect(evt.PriorityLevel <= level).To(BeTrue())
			level = evt.PriorityLevel
		}
	})

	It("should pop equal levels first-in first-out", func() {
		for i := 0; i < 10; i++ {
			queue.Push(Event{
				ID:            fmt.Sprintf("evt-%d", i),
				PriorityLevel: 5,
			})
		}

		for i := 0; i < 10; i++ {
			Expect(queue.Pop().ID).To(Equal(fmt.Sprintf("evt-%d", i)))
		}
	})

	It("should peek without removing", func() {
		queue.Push(Event{ID: "a", PriorityLevel: 3})
		queue.Push(Event{ID: "b", PriorityLevel: 7})

		Expect(queue.Peek().ID).To(Equal("b"))
		Expect(queue.Len()).To(Equal(2))
	})
})
