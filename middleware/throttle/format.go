package throttle

import "strconv"

func formatInt(v int) string { return strconv.Itoa(v) }

// retryMessage monta o texto exibido quando a ação é negada.
func retryMessage(retryAfterSeconds int) string {
	minutes := (retryAfterSeconds + 59) / 60
	if minutes < 1 {
		minutes = 1
	}
	if minutes == 1 {
		return "Too many attempts. Try again in 1 minute."
	}
	return "Too many attempts. Try again in " + formatInt(minutes) + " minutes."
}
