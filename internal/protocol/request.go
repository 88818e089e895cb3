package protocol

// Request is one parsed wire line, tagged with the connection it arrived on.
type Request struct {
	Kind   Kind
	ConnID uint64
	Fields map[string]string
}

// kindAliases maps every accepted leading token to its canonical kind.
// Older clients send the long forms.
var kindAliases = map[string]Kind{
	"LOGIN":         KindLogin,
	"NEWDOC":        KindNewDoc,
	"OPENDOC":       KindOpenDoc,
	"CHANGE":        KindChange,
	"CHANGEDOC":     KindChange,
	"EXITDOC":       KindExitDoc,
	"LOGOUT":        KindLogout,
	"CORRECT_ERROR": KindCorrectError,
	"CORRECTERROR":  KindCorrectError,
	"CHAT":          KindChat,
	"CHATMESSAGE":   KindChat,
}

// Parse tokenizes one request line into a typed request. The grammar is
//
//	<KIND>&key1=val1&key2=val2& ... &
//
// with values escaped per Escape. Unknown kinds and malformed field tokens
// yield a request of kind INVALID; the raw line is never a fatal error.
func Parse(connID uint64, line string) Request {
	req := Request{Kind: KindInvalid, ConnID: connID, Fields: map[string]string{}}

	tokens := splitUnescaped(line, '&')
	kind, ok := kindAliases[tokens[0]]
	if !ok {
		return req
	}

	for _, tok := range tokens[1:] {
		if tok == "" {
			continue
		}
		key, val, found := cutUnescaped(tok, '=')
		if !found {
			return Request{Kind: KindInvalid, ConnID: connID, Fields: map[string]string{}}
		}
		req.Fields[Unescape(key)] = Unescape(val)
	}

	req.Kind = kind
	return req
}
