package domain

import "strings"

const (
	PagePrefix = "page"
	MemePrefix = "meme"

	MemeRefresh = "refresh"

	MaxCallbackDataLength = 64
)

// CallbackData encodes a button payload as prefix:action:argument. Telegram limits it to 64 bytes.
func CallbackData(prefix, action, argument string) string {
	return prefix + ":" + action + ":" + argument
}

// ParseCallbackData splits a payload built by CallbackData. The argument may itself contain colons.
func ParseCallbackData(data string) (prefix, action, argument string, ok bool) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}

	return parts[0], parts[1], parts[2], true
}
