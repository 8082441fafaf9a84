package events

// Fixed topic names. Consumers and the topic bootstrap rely on these
// being bit-exact across all services.
const (
	TopicUserEvents        = "user.events"
	TopicAuthEvents        = "auth.events"
	TopicTransactionEvents = "transaction.events"
	TopicCategoryEvents    = "category.events"
	TopicSystemEvents      = "system.events"

	TopicDeadLetter = "events.dead_letter"

	TopicCheckoutRequests             = "checkout.requests"
	TopicCheckoutFinished             = "checkout.finished"
	TopicGamesCommands                = "games.commands"
	TopicGamesEvents                  = "games.events"
	TopicBiggerDiceParticipationPayed = "bigger_dice.participation_payed"
	TopicBiggerDiceWinPrize           = "bigger_dice.win_prize"
)

// DomainTopics lists the five domain event topics in routing order.
func DomainTopics() []string {
	return []string{
		TopicUserEvents,
		TopicAuthEvents,
		TopicTransactionEvents,
		TopicCategoryEvents,
		TopicSystemEvents,
	}
}

// AllTopics lists every topic the application expects to exist,
// including the dead-letter and feature topics.
func AllTopics() []string {
	return append(DomainTopics(),
		TopicDeadLetter,
		TopicCheckoutRequests,
		TopicCheckoutFinished,
		TopicGamesCommands,
		TopicGamesEvents,
		TopicBiggerDiceParticipationPayed,
		TopicBiggerDiceWinPrize,
	)
}
