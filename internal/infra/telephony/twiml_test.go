package telephony

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

func newTestRenderer() *Renderer {
	return NewRenderer("+15550000001", "+15551234567", "https://example.com/")
}

func render(t *testing.T, reply usecase.CallReply) string {
	t.Helper()
	ct, body, err := newTestRenderer().Render(&reply)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeXML, ct)
	assert.True(t, strings.HasPrefix(string(body), "<?xml"))
	return string(body)
}

func TestRender_Ack(t *testing.T) {
	ct, body, err := newTestRenderer().Render(&usecase.CallReply{Kind: usecase.ReplyAck})

	require.NoError(t, err)
	assert.Equal(t, ContentTypeText, ct)
	assert.Equal(t, "OK", string(body))
}

func TestRender_Greeting(t *testing.T) {
	out := render(t, usecase.CallReply{Kind: usecase.ReplyGreeting})

	assert.Contains(t, out, `<Say voice="alice">Hello and thank you for calling RepMotivatedSeller`)
	assert.Contains(t, out, `<Gather input="speech" timeout="10" speechTimeout="3" action="https://example.com/api/voice/webhook" method="POST"><Say voice="alice">Please speak now.</Say></Gather>`)
	assert.Contains(t, out, `<Dial><Number>+15550000001</Number></Dial>`)
	assert.Less(t, strings.Index(out, "<Gather"), strings.Index(out, "<Dial>"))
}

func TestRender_Transfer(t *testing.T) {
	out := render(t, usecase.CallReply{Kind: usecase.ReplyTransfer, Message: "Connecting you now."})

	assert.True(t, strings.HasPrefix(out[strings.Index(out, "<Response>"):], `<Response><Say voice="alice">Connecting you now.</Say>`))
	assert.Contains(t, out, `<Dial timeout="30" record="record-from-answer"><Number>+15550000001</Number></Dial>`)
	assert.Contains(t, out, `<Record timeout="60" transcribe="true" action="https://example.com/api/voice/webhook"></Record>`)
}

func TestRender_TransferWithoutMessage(t *testing.T) {
	out := render(t, usecase.CallReply{Kind: usecase.ReplyTransfer})

	assert.Equal(t, 2, strings.Count(out, "<Say "))
}

func TestRender_Continue(t *testing.T) {
	out := render(t, usecase.CallReply{Kind: usecase.ReplyContinue, Message: "Tell me more about your lender."})

	assert.Contains(t, out, "Tell me more about your lender.")
	assert.Contains(t, out, "How else can I help you today?")
	assert.Contains(t, out, "Have a great day!")
	assert.NotContains(t, out, "<Dial")
}

func TestRender_Schedule(t *testing.T) {
	out := render(t, usecase.CallReply{Kind: usecase.ReplySchedule, Message: "Sure."})

	assert.Contains(t, out, "scheduling system to book your consultation.")
	assert.Contains(t, out, `<Dial><Number>+15551234567</Number></Dial>`)
}

func TestRender_SayEscapes(t *testing.T) {
	out := render(t, usecase.CallReply{Kind: usecase.ReplySay, Message: "Fees <$500> & more"})

	assert.Contains(t, out, `<Response><Say voice="alice">Fees &lt;$500&gt; &amp; more</Say></Response>`)
}

func TestApology(t *testing.T) {
	assert.Contains(t, string(newTestRenderer().Apology()), "experiencing technical difficulties")
}
