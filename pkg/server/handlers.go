package server

import (
	"strconv"
	"strings"

	"github.com/deepakn94/CollabTeX/internal/protocol"
	"github.com/deepakn94/CollabTeX/pkg/document"
	"github.com/deepakn94/CollabTeX/pkg/logger"
)

// execute runs the handler for one parsed request and returns the response
// to broadcast. Faults never escape a handler: anything malformed, and any
// request addressing a document that does not exist, answers with the
// unframed invalid-request line.
func (s *Server) execute(req protocol.Request) string {
	switch req.Kind {
	case protocol.KindLogin:
		return s.handleLogin(req)
	case protocol.KindLogout:
		return s.handleLogout(req)
	case protocol.KindNewDoc:
		return s.handleNewDoc(req)
	case protocol.KindOpenDoc:
		return s.handleOpenDoc(req)
	case protocol.KindChange:
		return s.handleChange(req)
	case protocol.KindExitDoc:
		return s.handleExitDoc(req)
	case protocol.KindCorrectError:
		return s.handleCorrectError(req)
	case protocol.KindChat:
		return s.handleChat(req)
	default:
		return protocol.InvalidRequest
	}
}

func (s *Server) handleLogin(req protocol.Request) string {
	name, ok := req.Fields[protocol.FieldUserName]
	if !ok || name == "" {
		return protocol.InvalidRequest
	}

	if _, ok := s.registry.Login(name, req.ConnID); !ok {
		logger.Info("login rejected, %q already online", name)
		return protocol.NotLoggedIn(req.ConnID)
	}
	logger.Info("user %q logged in on connection %d", name, req.ConnID)
	return protocol.LoggedIn(name, req.ConnID, s.docInfos(name))
}

func (s *Server) handleLogout(req protocol.Request) string {
	name, ok := req.Fields[protocol.FieldUserName]
	if !ok || name == "" {
		return protocol.InvalidRequest
	}

	s.registry.Logout(name, req.ConnID)
	logger.Info("user %q logged out", name)
	return protocol.LoggedOut(name)
}

func (s *Server) handleNewDoc(req protocol.Request) string {
	user, docName, ok := s.userAndDoc(req)
	if !ok {
		return protocol.InvalidRequest
	}

	doc, err := s.registry.CreateDocument(docName, user)
	if err != nil {
		logger.Info("document %q not created: %v", docName, err)
		return protocol.NotCreatedDuplicate(user)
	}
	logger.Info("document %q created by %q", docName, user)
	return protocol.Created(user, docName, doc.GetDate())
}

func (s *Server) handleOpenDoc(req protocol.Request) string {
	user, docName, ok := s.userAndDoc(req)
	if !ok {
		return protocol.InvalidRequest
	}
	doc, ok := s.registry.GetDocument(docName)
	if !ok {
		return protocol.InvalidRequest
	}

	doc.AddCollaborator(user)
	return protocol.Opened(user, docName, s.collabList(doc), doc.Version(),
		s.colorList(doc), doc.Chat(), doc.Text())
}

func (s *Server) handleChange(req protocol.Request) string {
	user, docName, ok := s.userAndDoc(req)
	if !ok {
		return protocol.InvalidRequest
	}
	doc, ok := s.registry.GetDocument(docName)
	if !ok {
		return protocol.InvalidRequest
	}

	pos, err := strconv.Atoi(req.Fields[protocol.FieldPosition])
	if err != nil {
		return protocol.InvalidRequest
	}
	version, err := strconv.Atoi(req.Fields[protocol.FieldVersion])
	if err != nil {
		return protocol.InvalidRequest
	}

	switch req.Fields[protocol.FieldType] {
	case protocol.TypeInsertion:
		text := protocol.DecodeText(req.Fields[protocol.FieldChange])
		appliedPos, newVersion, err := doc.Insert(pos, text, version)
		if err != nil {
			logger.Error("insert on %q rejected: %v", docName, err)
			return protocol.InvalidRequest
		}
		color, _ := s.registry.UserColor(user)
		return protocol.ChangedInsertion(user, docName, appliedPos, len(text),
			newVersion, color.String(), text)

	case protocol.TypeDeletion:
		length, err := strconv.Atoi(req.Fields[protocol.FieldLength])
		if err != nil {
			return protocol.InvalidRequest
		}
		appliedPos, appliedLen, newVersion, err := doc.Delete(pos, length, version)
		if err != nil {
			logger.Error("delete on %q rejected: %v", docName, err)
			return protocol.InvalidRequest
		}
		return protocol.ChangedDeletion(user, docName, appliedPos, appliedLen, newVersion)

	default:
		return protocol.InvalidRequest
	}
}

func (s *Server) handleExitDoc(req protocol.Request) string {
	user, docName, ok := s.userAndDoc(req)
	if !ok {
		return protocol.InvalidRequest
	}
	// The collaborator list is untouched: it records everyone who has ever
	// opened the document.
	if _, ok := s.registry.GetDocument(docName); !ok {
		return protocol.InvalidRequest
	}
	return protocol.ExitedDoc(user, docName, s.docInfos(user))
}

func (s *Server) handleCorrectError(req protocol.Request) string {
	user, docName, ok := s.userAndDoc(req)
	if !ok {
		return protocol.InvalidRequest
	}
	doc, ok := s.registry.GetDocument(docName)
	if !ok {
		return protocol.InvalidRequest
	}
	return protocol.Corrected(user, docName, doc.Text())
}

func (s *Server) handleChat(req protocol.Request) string {
	user, docName, ok := s.userAndDoc(req)
	if !ok {
		return protocol.InvalidRequest
	}
	doc, ok := s.registry.GetDocument(docName)
	if !ok {
		return protocol.InvalidRequest
	}

	content := req.Fields[protocol.FieldChatContent]
	doc.AppendChat(user + " : " + content + "\n")
	return protocol.ChatMessage(user, docName, content)
}

// userAndDoc pulls the two fields almost every request carries.
func (s *Server) userAndDoc(req protocol.Request) (user, docName string, ok bool) {
	user = req.Fields[protocol.FieldUserName]
	docName = req.Fields[protocol.FieldDocName]
	return user, docName, user != "" && docName != ""
}

// docInfos renders the document-info listing sent after loggedin and
// exiteddoc, one line per document in creation order.
func (s *Server) docInfos(user string) []string {
	docs := s.registry.Documents()
	infos := make([]string, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, protocol.DocInfo(doc.Name(), doc.GetDate(), s.collabList(doc), user))
	}
	return infos
}

func (s *Server) collabList(doc *document.Document) string {
	return strings.Join(doc.Collaborators(), ",")
}

// colorList renders one `R,G,B&` unit per collaborator, in collaborator
// order. Every collaborator has logged in at least once, so each has a
// color; a missing mapping is skipped rather than invented.
func (s *Server) colorList(doc *document.Document) string {
	var b strings.Builder
	for _, name := range doc.Collaborators() {
		if c, ok := s.registry.UserColor(name); ok {
			b.WriteString(c.String())
			b.WriteString("&")
		}
	}
	return b.String()
}
