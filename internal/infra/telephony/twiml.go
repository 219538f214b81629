// Package telephony turns call replies into TwiML for the voice provider.
package telephony

import (
	"encoding/xml"
	"strings"

	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

const (
	ContentTypeXML  = "text/xml"
	ContentTypeText = "text/plain"

	WebhookPath = "/api/voice/webhook"

	voice = "alice"

	msgGreeting = `Hello and thank you for calling RepMotivatedSeller, your trusted foreclosure assistance partner. I'm your AI assistant, and I'm here to help you with your foreclosure concerns. To get started, please tell me in a few words what you're calling about today. For example, you can say "foreclosure help", "check my case status", "speak to an agent", or "schedule an appointment".`

	msgSpeakNow     = "Please speak now."
	msgNoInput      = "I didn't hear anything. Let me transfer you to one of our specialists."
	msgTransfer     = "I understand you need to speak with one of our specialists. Let me connect you now. Please hold while I transfer your call."
	msgAgentsBusy   = "I apologize, but all our specialists are currently busy. Please leave your name and phone number after the beep, and we'll call you back within one hour."
	msgAnythingElse = "How else can I help you today?"
	msgGoodbye      = "Thank you for calling RepMotivatedSeller. Have a great day!"
	msgScheduling   = "I'll connect you with our scheduling system to book your consultation."
)

type response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr"`
	Text    string   `xml:",chardata"`
}

type gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Timeout       int      `xml:"timeout,attr"`
	SpeechTimeout int      `xml:"speechTimeout,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	Say           say
}

type dial struct {
	XMLName xml.Name `xml:"Dial"`
	Timeout int      `xml:"timeout,attr,omitempty"`
	Record  string   `xml:"record,attr,omitempty"`
	Number  string   `xml:"Number"`
}

type record struct {
	XMLName    xml.Name `xml:"Record"`
	Timeout    int      `xml:"timeout,attr"`
	Transcribe bool     `xml:"transcribe,attr"`
	Action     string   `xml:"action,attr"`
}

// Renderer knows the phone numbers and callback URL the markup points at.
type Renderer struct {
	AgentPhone      string
	SchedulingPhone string
	WebhookURL      string
}

func NewRenderer(agentPhone, schedulingPhone, webhookBaseURL string) *Renderer {
	return &Renderer{
		AgentPhone:      agentPhone,
		SchedulingPhone: schedulingPhone,
		WebhookURL:      strings.TrimRight(webhookBaseURL, "/") + WebhookPath,
	}
}

// Render returns the content type and body for a reply. ReplyAck is a plain
// "OK"; everything else is a TwiML document.
func (r *Renderer) Render(reply *usecase.CallReply) (string, []byte, error) {
	if reply.Kind == usecase.ReplyAck {
		return ContentTypeText, []byte("OK"), nil
	}

	var verbs []any
	switch reply.Kind {
	case usecase.ReplyGreeting:
		verbs = []any{
			speak(msgGreeting),
			r.speechGather(msgSpeakNow),
			speak(msgNoInput),
			dial{Number: r.AgentPhone},
		}
	case usecase.ReplyTransfer:
		if reply.Message != "" {
			verbs = append(verbs, speak(reply.Message))
		}
		verbs = append(verbs,
			speak(msgTransfer),
			dial{Timeout: 30, Record: "record-from-answer", Number: r.AgentPhone},
			speak(msgAgentsBusy),
			record{Timeout: 60, Transcribe: true, Action: r.WebhookURL},
		)
	case usecase.ReplyContinue:
		verbs = []any{
			speak(reply.Message),
			r.speechGather(msgAnythingElse),
			speak(msgGoodbye),
		}
	case usecase.ReplySchedule:
		verbs = []any{
			speak(reply.Message),
			speak(msgScheduling),
			dial{Number: r.SchedulingPhone},
		}
	default:
		verbs = []any{speak(reply.Message)}
	}

	body, err := xml.Marshal(response{Verbs: verbs})
	if err != nil {
		return "", nil, err
	}
	return ContentTypeXML, append([]byte(xml.Header), body...), nil
}

// Apology is used when the webhook itself fails.
func (r *Renderer) Apology() []byte {
	_, body, _ := r.Render(&usecase.CallReply{Kind: usecase.ReplySay, Message: usecase.MsgApology})
	return body
}

func speak(text string) say {
	return say{Voice: voice, Text: text}
}

func (r *Renderer) speechGather(prompt string) gather {
	return gather{
		Input:         "speech",
		Timeout:       10,
		SpeechTimeout: 3,
		Action:        r.WebhookURL,
		Method:        "POST",
		Say:           speak(prompt),
	}
}
