package common

// Publisher is implemented by the fan-out hub. Publishing is fire-and-forget:
// a slow or absent subscriber never fails the mutation that produced the event.
type Publisher interface {
	PublishRoster(event RosterEvent)
	PublishMessage(event MessageEvent)
}

// NopPublisher discards every event. Used where no hub is wired (tests, tools).
type NopPublisher struct{}

func (NopPublisher) PublishRoster(RosterEvent)   {}
func (NopPublisher) PublishMessage(MessageEvent) {}
