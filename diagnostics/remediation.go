package diagnostics

import "strings"

// InvalidSignatureChecklist is shown when the backend refuses the init data signature.
var InvalidSignatureChecklist = []string{
	"Bot token on the server does not match the bot that opened the Mini App (credential mismatch)",
	"Init data hash mismatch: the server built the data-check-string differently",
	"Clock skew between client and server: check NTP on the server, auth_date is time sensitive",
	"Init data was altered in transit (proxy rewriting, double URL encoding, manual edits)",
}

var invalidSignatureMarkers = []string{
	"invalid_telegram_data",
	"invalid signature",
	"invalid_signature",
	"hash mismatch",
}

func isInvalidSignature(reason string) bool {
	reason = strings.ToLower(reason)
	for _, m := range invalidSignatureMarkers {
		if strings.Contains(reason, m) {
			return true
		}
	}
	return false
}
