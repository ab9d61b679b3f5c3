package services

import "strings"

type replyRule struct {
	// words match whole words, phrases match anywhere in the message.
	words   []string
	phrases []string
	reply   string
}

var replyRules = []replyRule{
	{phrases: []string{"price", "cost"}, reply: "Our consultation fee is $50. Whitening starts at $200. Do you want to book?"},
	{phrases: []string{"appointment", "book"}, reply: "You can book an appointment directly through the Patient Portal dashboard!"},
	{words: []string{"hello", "hi", "hey"}, reply: "Hello! I am DentBot 🤖. Ask me about prices, services, or hours."},
	{words: []string{"hours", "open", "close", "time"}, reply: "We are open Mon-Fri from 9 AM to 6 PM."},
	{phrases: []string{"thank", "merci"}, reply: "You're welcome! If you have any more questions, feel free to ask."},
	{phrases: []string{"salam"}, reply: "Wa alaikum salam! How can I assist you today?"},
	{phrases: []string{"how are you", "wassup"}, words: []string{"cv"}, reply: "Great! Hope your teeth are doing well 😁 How can I help you today?"},
	{phrases: []string{"services", "treatments"}, reply: "We offer check-ups, cleaning, fillings, root canals and whitening. You can book any of them from the Patient Portal dashboard!"},
}

const unknownReply = "I'm not sure about that! Please call our secretary for detailed info."

// LocalReply answers common questions without an upstream assistant.
func LocalReply(message string) string {
	msg := strings.ToLower(message)
	words := strings.FieldsFunc(msg, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	for _, rule := range replyRules {
		for _, p := range rule.phrases {
			if strings.Contains(msg, p) {
				return rule.reply
			}
		}
		for _, w := range rule.words {
			for _, got := range words {
				if got == w {
					return rule.reply
				}
			}
		}
	}
	return unknownReply
}
