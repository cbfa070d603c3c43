package voice

import (
	"fmt"
	"strings"
)

const (
	promptLang  = "en-US"
	promptVoice = "Polly.Joanna"

	// One digit, 8 seconds to press it. actionOnEmptyResult makes Twilio
	// post to the action URL even on timeout, so the next stage always runs.
	gatherTimeoutSec = 8
)

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlReplacer.Replace(s)
}

// sayLine renders a Say verb. The text is trusted SSML so markup like
// <break> and <emphasis> survives.
func sayLine(text string) string {
	return fmt.Sprintf(`<Say language=%q voice=%q>%s</Say>`, promptLang, promptVoice, text)
}

// gatherDoc builds a document that speaks the given lines inside a one-digit
// Gather and hangs up if nothing arrives at all.
func gatherDoc(actionURL string, lines []string) string {
	var inner strings.Builder
	for i, l := range lines {
		if i > 0 {
			inner.WriteString(`<Pause length="1"/>`)
		}
		inner.WriteString(sayLine(l))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Pause length="1"/>
  <Gather input="dtmf" numDigits="1" timeout="%d" actionOnEmptyResult="true" action="%s" method="POST">
    %s
  </Gather>
  %s
  <Hangup/>
</Response>`, gatherTimeoutSec, escapeXML(actionURL), inner.String(),
		sayLine(`No input received.<break time="600ms"/> Goodbye.`))
}

// messageDoc speaks the given lines and hangs up.
func messageDoc(lines ...string) string {
	var body strings.Builder
	for _, l := range lines {
		body.WriteString("\n  ")
		body.WriteString(sayLine(l))
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Response>%s
  <Hangup/>
</Response>`, body.String())
}

// hangupDoc is the bare fallback when nothing sensible can be said.
func hangupDoc() string {
	return `<?xml version="1.0" encoding="UTF-8"?><Response><Hangup/></Response>`
}
