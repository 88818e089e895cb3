package protocol

import (
	"strconv"
	"strings"
)

// Response builders. Every response is `<kind>&key=val&...&`; a single
// dispatch may produce several newline-separated lines (login and exit
// listings, the update/opened pair). Field order is fixed and part of the
// wire contract.

func field(key, val string) string {
	return key + "=" + Escape(val) + "&"
}

// rawField skips escaping. Used for the colors listing, whose `R,G,B&`
// units embed a literal `&` terminator that clients split on.
func rawField(key, val string) string {
	return key + "=" + val + "&"
}

func intField(key string, val int) string {
	return key + "=" + strconv.Itoa(val) + "&"
}

// IDResponse is the handshake line sent to a newly accepted connection only.
func IDResponse(connID uint64) string {
	return "id&id=" + strconv.FormatUint(connID, 10) + "&"
}

// DocInfo describes one document in a login or exit listing.
func DocInfo(docName, date, collab, userName string) string {
	return "docinfo&" + field(FieldDocName, docName) + field("date", date) +
		field("collab", collab) + field(FieldUserName, userName)
}

// LoggedIn acknowledges a successful login, followed by one docinfo line
// per document and a closing enddocinfo line.
func LoggedIn(userName string, connID uint64, docInfos []string) string {
	var b strings.Builder
	b.WriteString("loggedin&" + field(FieldUserName, userName))
	b.WriteString("id=" + strconv.FormatUint(connID, 10) + "&")
	for _, info := range docInfos {
		b.WriteString("\n")
		b.WriteString(info)
	}
	b.WriteString("\nenddocinfo&" + field(FieldUserName, userName))
	return b.String()
}

// NotLoggedIn rejects a login whose name is already online.
func NotLoggedIn(connID uint64) string {
	return "notloggedin&id=" + strconv.FormatUint(connID, 10) + "&"
}

// LoggedOut acknowledges a logout.
func LoggedOut(userName string) string {
	return "loggedout&" + field(FieldUserName, userName)
}

// Created acknowledges document creation.
func Created(userName, docName, date string) string {
	return "created&" + field(FieldUserName, userName) +
		field(FieldDocName, docName) + field("date", date)
}

// NotCreatedDuplicate rejects creation of a document whose name is taken.
func NotCreatedDuplicate(userName string) string {
	return "notcreatedduplicate&" + field(FieldUserName, userName)
}

// Opened carries the full document state to a client that opened it,
// preceded by an update line advertising the new collaborator list to
// everyone else. Document newlines travel as TABs.
func Opened(userName, docName, collaborators string, version int, colors, chat, text string) string {
	update := "update&" + field(FieldDocName, docName) +
		field(FieldCollaborators, collaborators) + rawField(FieldColors, colors)
	opened := "opened&" + field(FieldUserName, userName) +
		field(FieldDocName, docName) + field(FieldCollaborators, collaborators) +
		intField(FieldVersion, version) + rawField(FieldColors, colors) +
		field(FieldChatContent, chat) + field("docContent", EncodeText(text))
	return update + "\n" + opened
}

// ChangedInsertion broadcasts an applied insertion, rebased to the current
// version, with the author's color so remote carets can be painted.
func ChangedInsertion(userName, docName string, position, length, version int, color, text string) string {
	return "changed&" + field(FieldType, TypeInsertion) +
		field(FieldUserName, userName) + field(FieldDocName, docName) +
		intField(FieldPosition, position) + intField(FieldLength, length) +
		intField(FieldVersion, version) + rawField("color", color) +
		field(FieldChange, EncodeText(text))
}

// ChangedDeletion broadcasts an applied deletion.
func ChangedDeletion(userName, docName string, position, length, version int) string {
	return "changed&" + field(FieldType, TypeDeletion) +
		field(FieldUserName, userName) + field(FieldDocName, docName) +
		intField(FieldPosition, position) + intField(FieldLength, length) +
		intField(FieldVersion, version)
}

// ChatMessage broadcasts one chat line.
func ChatMessage(userName, docName, content string) string {
	return "chat&" + field(FieldUserName, userName) +
		field(FieldDocName, docName) + field(FieldChatContent, content)
}

// Corrected resyncs a client that lost track of the document state.
func Corrected(userName, docName, text string) string {
	return "corrected&" + field(FieldUserName, userName) +
		field(FieldDocName, docName) + field("content", EncodeText(text))
}

// ExitedDoc acknowledges leaving a document, followed by the same listing
// a fresh login receives.
func ExitedDoc(userName, docName string, docInfos []string) string {
	var b strings.Builder
	b.WriteString("exiteddoc&" + field(FieldUserName, userName) + field(FieldDocName, docName))
	for _, info := range docInfos {
		b.WriteString("\n")
		b.WriteString(info)
	}
	b.WriteString("\nenddocinfo&" + field(FieldUserName, userName))
	return b.String()
}
