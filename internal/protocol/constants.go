// Package protocol defines the line protocol spoken between the server and
// its clients: one `&`-delimited request or response per line, with
// backslash escaping of delimiter characters inside field values.
package protocol

// Kind identifies a request type, the leading token of a request line.
type Kind string

const (
	KindLogin        Kind = "LOGIN"
	KindNewDoc       Kind = "NEWDOC"
	KindOpenDoc      Kind = "OPENDOC"
	KindChange       Kind = "CHANGE"
	KindExitDoc      Kind = "EXITDOC"
	KindLogout       Kind = "LOGOUT"
	KindCorrectError Kind = "CORRECT_ERROR"
	KindChat         Kind = "CHAT"

	// KindInvalid is produced for unknown kinds and malformed lines.
	KindInvalid Kind = "INVALID"
)

// Field names shared by requests and responses.
const (
	FieldUserName    = "userName"
	FieldDocName     = "docName"
	FieldID          = "id"
	FieldType        = "type"
	FieldPosition    = "position"
	FieldLength      = "length"
	FieldVersion     = "version"
	FieldChange      = "change"
	FieldChatContent = "chatContent"

	FieldCollaborators = "collaborators"
	FieldColors        = "colors"
)

// Change types carried in the `type` field of CHANGE requests and
// `changed` responses.
const (
	TypeInsertion = "insertion"
	TypeDeletion  = "deletion"
)

// InvalidRequest is the unframed line sent back when a request cannot be
// parsed or addresses a resource that does not exist.
const InvalidRequest = "Invalid request"

// DefaultPort is the TCP port the server binds when none is configured.
const DefaultPort = 4444
