package nlu

// DetectScript reports whether an utterance is Malayalam script, Latin, or
// a mix of both. Kirana utterances routinely mix scripts in one sentence
// ("2 kg അരി"), so this is only used for logging and metrics, never to
// pick a parsing path.
func DetectScript(text string) string {
	var malayalam, latin bool
	for _, r := range text {
		switch {
		case r >= 0x0D00 && r <= 0x0D7F:
			malayalam = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latin = true
		}
	}

	switch {
	case malayalam && latin:
		return "mixed"
	case malayalam:
		return "ml"
	case latin:
		return "en"
	default:
		return "unknown"
	}
}
