package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/atotto/clipboard"

	"github.com/silanhu/easycli/internal/chat"
	"github.com/silanhu/easycli/internal/config"
	"github.com/silanhu/easycli/internal/history"
	"github.com/silanhu/easycli/internal/ui"
)

// slashCommand is one entry in the in-chat command registry.
type slashCommand struct {
	name        string
	usage       string
	description string
	handler     func(s *chatSession, args string) error
}

// slashRegistry holds the ordered command list (order is the /help order).
type slashRegistry struct {
	commands []slashCommand
	index    map[string]int
}

func newSlashRegistry() *slashRegistry {
	r := &slashRegistry{index: make(map[string]int)}
	for _, c := range []slashCommand{
		{"help", "/help", "Show this command list", cmdHelp},
		{"new", "/new", "Start a new conversation", cmdNew},
		{"clear", "/clear", "Clear the transcript", cmdClear},
		{"copy", "/copy", "Copy the last reply to the clipboard", cmdCopy},
		{"save", "/save [path]", "Export the conversation to a file", cmdSave},
		{"sessions", "/sessions", "List saved conversations", cmdSessions},
		{"load", "/load <ref>", "Load a saved conversation (@last, index, title)", cmdLoad},
		{"model", "/model [name]", "Show or switch the model", cmdModel},
		{"fav", "/fav [ref]", "Toggle favorite on a conversation", cmdFav},
		{"alias", "/alias add|rm|list", "Manage command aliases", cmdAlias},
		{"exit", "/exit", "End the session", cmdExit},
		{"quit", "/quit", "End the session", cmdExit},
	} {
		r.index[c.name] = len(r.commands)
		r.commands = append(r.commands, c)
	}
	return r
}

// dispatch parses a "/name args" line, expands aliases, and runs the
// handler. A bare "/" lists the commands.
func (r *slashRegistry) dispatch(s *chatSession, line string) error {
	line = strings.TrimSpace(line)
	if line == "/" {
		return cmdHelp(s, "")
	}

	name, args, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	name = strings.ToLower(name)
	args = strings.TrimSpace(args)

	// Alias expansion: the expansion replaces the command word and may
	// carry its own leading arguments.
	if expansion, ok := s.cfg.Aliases[name]; ok {
		expName, expArgs, _ := strings.Cut(strings.TrimSpace(expansion), " ")
		name = strings.ToLower(strings.TrimPrefix(expName, "/"))
		if expArgs != "" {
			args = strings.TrimSpace(expArgs + " " + args)
		}
	}

	i, ok := r.index[name]
	if !ok {
		return fmt.Errorf("unknown command /%s (try /help)", name)
	}
	return r.commands[i].handler(s, args)
}

func cmdHelp(s *chatSession, _ string) error {
	s.pause(func() {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\nCommands:")
		for _, c := range s.registry.commands {
			fmt.Fprintf(w, "  %s\t%s\n", c.usage, c.description)
		}
		if len(s.cfg.Aliases) > 0 {
			fmt.Fprintln(w, "\nAliases:")
			for name, expansion := range s.cfg.Aliases {
				fmt.Fprintf(w, "  /%s\t→ /%s\n", name, expansion)
			}
		}
		w.Flush()
		fmt.Print("\nPress Enter to continue...")
		bufio.NewReader(os.Stdin).ReadString('\n')
	})
	return nil
}

func cmdNew(s *chatSession, _ string) error {
	if s.display != nil {
		s.display.Clear()
	} else {
		s.log().Clear()
	}
	s.convID = ""
	s.notify("Started a new conversation", ui.SeveritySuccess)
	return nil
}

func cmdClear(s *chatSession, _ string) error {
	if s.display != nil {
		s.display.Clear()
	} else {
		s.log().Clear()
	}
	return nil
}

func cmdCopy(s *chatSession, _ string) error {
	msgs := s.log().Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.RoleAssistant {
			if err := clipboard.WriteAll(msgs[i].Content); err != nil {
				return fmt.Errorf("clipboard unavailable: %w", err)
			}
			s.notify("Copied last reply to clipboard", ui.SeveritySuccess)
			return nil
		}
	}
	return fmt.Errorf("nothing to copy yet")
}

func cmdSave(s *chatSession, args string) error {
	if s.store == nil {
		return fmt.Errorf("history store unavailable")
	}
	if s.convID == "" {
		return fmt.Errorf("nothing saved yet; finish a turn first")
	}

	path := args
	if path == "" {
		path = fmt.Sprintf("easycli-%s.md", s.convID[:8])
	}
	if err := s.store.ExportToFile(s.convID, path); err != nil {
		return err
	}
	s.notify(fmt.Sprintf("Exported to %s", path), ui.SeveritySuccess)
	return nil
}

func cmdSessions(s *chatSession, _ string) error {
	if s.store == nil {
		return fmt.Errorf("history store unavailable")
	}
	conversations, err := s.store.ListConversations()
	if err != nil {
		return err
	}
	if len(conversations) == 0 {
		s.notify("No saved conversations", ui.SeverityInfo)
		return nil
	}

	s.pause(func() {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\n#\tTITLE\tMODEL\tMSGS\tUPDATED")
		for i, conv := range conversations {
			star := " "
			if fav, _ := s.store.IsFavorite(conv.ID); fav {
				star = "★"
			}
			title := conv.Title
			if len(title) > 40 {
				title = title[:40] + "..."
			}
			fmt.Fprintf(w, "%d%s\t%s\t%s\t%d\t%s\n",
				i+1, star, title, conv.Model, len(conv.Messages),
				conv.UpdatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()
		fmt.Print("\nPress Enter to continue...")
		bufio.NewReader(os.Stdin).ReadString('\n')
	})
	return nil
}

func cmdLoad(s *chatSession, args string) error {
	if s.store == nil {
		return fmt.Errorf("history store unavailable")
	}
	if args == "" {
		return fmt.Errorf("usage: /load <ref> (@last, index, or title)")
	}

	id, err := history.NewResolver(s.store).Resolve(args)
	if err != nil {
		return err
	}
	conv, err := s.store.GetConversation(id)
	if err != nil {
		return err
	}

	restoreConversation(s, conv)
	s.convID = conv.ID
	s.notify(fmt.Sprintf("Loaded %q (%d messages)", conv.Title, len(conv.Messages)), ui.SeveritySuccess)
	return nil
}

// restoreConversation replays a saved conversation into the session log.
func restoreConversation(s *chatSession, conv *history.Conversation) {
	if s.display != nil {
		s.display.Clear()
		for _, m := range conv.Messages {
			if m.Role == "assistant" {
				s.display.AddAssistantMessage(m.Content, m.Timestamp, m.Duration)
			} else {
				s.display.AddUserMessage(m.Content)
			}
		}
		return
	}
	s.log().Clear()
	for _, m := range conv.Messages {
		if m.Role == "assistant" {
			s.log().AddAssistant(m.Content, m.Timestamp, m.Duration)
		} else {
			s.log().AddUser(m.Content)
		}
	}
}

func cmdModel(s *chatSession, args string) error {
	if args == "" {
		s.notify(fmt.Sprintf("Current model: %s", s.model), ui.SeverityInfo)
		return nil
	}
	s.model = args
	if s.store != nil && s.convID != "" {
		s.store.UpdateModel(s.convID, args)
	}
	s.notify(fmt.Sprintf("Switched to %s", args), ui.SeveritySuccess)
	return nil
}

func cmdFav(s *chatSession, args string) error {
	if s.store == nil {
		return fmt.Errorf("history store unavailable")
	}

	id := s.convID
	if args != "" {
		resolved, err := history.NewResolver(s.store).Resolve(args)
		if err != nil {
			return err
		}
		id = resolved
	}
	if id == "" {
		return fmt.Errorf("no conversation yet; finish a turn first")
	}

	fav, err := s.store.ToggleFavorite(id)
	if err != nil {
		return err
	}
	if fav {
		s.notify("Marked as favorite", ui.SeveritySuccess)
	} else {
		s.notify("Removed favorite", ui.SeveritySuccess)
	}
	return nil
}

func cmdAlias(s *chatSession, args string) error {
	sub, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)

	switch sub {
	case "add":
		name, expansion, ok := strings.Cut(rest, " ")
		if !ok || name == "" {
			return fmt.Errorf("usage: /alias add <name> <command...>")
		}
		name = strings.ToLower(strings.TrimPrefix(name, "/"))
		if s.cfg.Aliases == nil {
			s.cfg.Aliases = make(map[string]string)
		}
		s.cfg.Aliases[name] = strings.TrimPrefix(strings.TrimSpace(expansion), "/")
		if err := config.Save(s.cfg); err != nil {
			return fmt.Errorf("failed to persist alias: %w", err)
		}
		s.notify(fmt.Sprintf("Alias /%s added", name), ui.SeveritySuccess)
		return nil

	case "rm":
		name := strings.ToLower(strings.TrimPrefix(rest, "/"))
		if name == "" {
			return fmt.Errorf("usage: /alias rm <name>")
		}
		if _, ok := s.cfg.Aliases[name]; !ok {
			return fmt.Errorf("no such alias /%s", name)
		}
		delete(s.cfg.Aliases, name)
		if err := config.Save(s.cfg); err != nil {
			return fmt.Errorf("failed to persist alias: %w", err)
		}
		s.notify(fmt.Sprintf("Alias /%s removed", name), ui.SeveritySuccess)
		return nil

	case "list", "":
		if len(s.cfg.Aliases) == 0 {
			s.notify("No aliases defined", ui.SeverityInfo)
			return nil
		}
		var parts []string
		for name, expansion := range s.cfg.Aliases {
			parts = append(parts, fmt.Sprintf("/%s → /%s", name, expansion))
		}
		s.notify(strings.Join(parts, "  "), ui.SeverityInfo)
		return nil

	default:
		return fmt.Errorf("usage: /alias add|rm|list")
	}
}

func cmdExit(_ *chatSession, _ string) error {
	return errExitChat
}
