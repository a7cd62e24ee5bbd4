package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"iask/config"
	"iask/engine"
	"iask/model"
	"iask/provider"
	"iask/speech"
	"iask/storage"
	"iask/tools"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	config.InitDebugLog(cfg.DataDir())

	creds := config.NewCredentialStore(config.EncryptionMethod(cfg.SecurityMethod), cfg.SSHKeyPath)
	if err := creds.Load(cfg.DataDir()); err != nil {
		fmt.Printf("Failed to load credentials: %v\n", err)
		os.Exit(1)
	}

	prov, err := provider.NewProvider(provider.Config{
		Type:         provider.MapProviderIDToType(cfg.ProviderType),
		BaseURL:      cfg.ProviderBaseURL,
		Model:        cfg.Model,
		APIKey:       creds.Get(cfg.ProviderType),
		SystemPrompt: cfg.DefaultSystemPrompt,
	})
	if err != nil {
		fmt.Printf("Failed to create provider: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewConversationStore(cfg.DataDir())
	if err != nil {
		fmt.Printf("Failed to open conversation store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	registry := tools.NewRegistry()
	if err := tools.RegisterBuiltins(registry, tools.BuiltinOptions{DataDir: cfg.DataDir()}); err != nil {
		fmt.Printf("Failed to register tools: %v\n", err)
		os.Exit(1)
	}

	conv := loadConversation(store)
	if conv.Len() > 0 {
		fmt.Printf("Resumed conversation (%d turns)\n", conv.Len())
	}
	eng := engine.New(prov, registry, conv, engine.Config{
		PublishInterval: intervalFromMS(cfg.PublishIntervalMS),
		MaxChainDepth:   cfg.MaxChainDepth,
	})
	eng.SetPersister(store)

	speechQueue := speech.NewQueue(func(sentence string) {
		color.New(color.FgCyan).Fprintf(os.Stderr, "[speech] %s\n", sentence)
	})
	eng.SetSpeechSink(speechQueue.Enqueue)
	eng.SetSpeechEnabled(cfg.SpeechEnabled)

	repl := &repl{
		engine:      eng,
		conv:        conv,
		search:      storage.NewSearchIndex(store),
		speechQueue: speechQueue,
		speechOn:    cfg.SpeechEnabled,
	}
	eng.SetUpdateFunc(repl.onUpdate)

	repl.run()
}

func intervalFromMS(ms int) time.Duration {
	if ms == 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// loadConversation resumes the most recently active chat from the store, or
// starts a fresh conversation when none exists.
func loadConversation(store *storage.ConversationStore) *model.Conversation {
	chats, err := store.ListChats()
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[main] list chats: %v", err)
		}
		return model.NewConversation()
	}
	if len(chats) == 0 {
		return model.NewConversation()
	}
	turns, err := store.LoadHistory(chats[0])
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[main] load history for %s: %v", chats[0], err)
		}
		return model.NewConversation()
	}
	return model.NewConversationWithHistory(chats[0], turns)
}

// repl is a line-oriented front end over the engine. It prints assistant
// content incrementally as the engine publishes it.
type repl struct {
	engine      *engine.Engine
	conv        *model.Conversation
	search      *storage.SearchIndex
	speechQueue *speech.Queue
	speechOn    bool

	mu         sync.Mutex
	lastUserID string
	printed    map[string]int // turnID -> chars already printed
}

func (r *repl) run() {
	bold := color.New(color.Bold)
	bold.Printf("iask %s (%s) - provider ready\n", Version, License)
	fmt.Println("Commands: /stop /resend [text] /search <query> /speak on|off /quit")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		color.New(color.FgGreen).Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if r.handleCommand(line) {
				break
			}
			continue
		}

		r.mu.Lock()
		userID, _ := r.engine.Submit(context.Background(), line, nil)
		r.lastUserID = userID
		r.mu.Unlock()
		r.engine.Wait()
		fmt.Println()
	}

	r.engine.CancelAll()
	r.engine.Wait()
}

// handleCommand returns true when the REPL should exit.
func (r *repl) handleCommand(line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/quit", "/exit":
		return true

	case "/stop":
		r.engine.CancelAll()
		r.speechQueue.Clear()

	case "/resend":
		r.mu.Lock()
		userID := r.lastUserID
		r.mu.Unlock()
		if userID == "" {
			color.Red("Nothing to resend yet.")
			return false
		}
		if _, err := r.engine.Resend(context.Background(), userID, rest); err != nil {
			color.Red("Resend failed: %v", err)
			return false
		}
		r.engine.Wait()
		fmt.Println()

	case "/search":
		if rest == "" {
			color.Red("Usage: /search <query>")
			return false
		}
		matches, err := r.search.Search(rest)
		if err != nil {
			color.Red("Search failed: %v", err)
			return false
		}
		if len(matches) == 0 {
			fmt.Println("No matches.")
			return false
		}
		for _, m := range matches {
			fmt.Printf("%s [%s] %s\n", m.Timestamp.Format("2006-01-02 15:04"), m.Role, m.Preview)
		}

	case "/speak":
		switch rest {
		case "on":
			r.speechOn = true
			r.engine.SetSpeechEnabled(true)
			fmt.Println("Speech on.")
		case "off":
			r.speechOn = false
			r.engine.SetSpeechEnabled(false)
			r.speechQueue.Clear()
			fmt.Println("Speech off.")
		default:
			color.Red("Usage: /speak on|off")
		}

	default:
		color.Red("Unknown command %s", cmd)
	}
	return false
}

// onUpdate prints the not-yet-printed suffix of streaming assistant content.
// The engine throttles how often this fires for content changes.
func (r *repl) onUpdate(t model.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.printed == nil {
		r.printed = make(map[string]int)
	}

	switch t.Role {
	case model.RoleAssistant:
		done := r.printed[t.ID]
		if len(t.Content) > done {
			fmt.Print(t.Content[done:])
			r.printed[t.ID] = len(t.Content)
		}
	case model.RoleTool:
		if !t.Answering && t.Content != "" && r.printed[t.ID] == 0 {
			color.New(color.FgYellow).Printf("\n[%s] %s\n", t.ToolName, t.Content)
			r.printed[t.ID] = len(t.Content)
		}
	case model.RoleChoice:
		if r.printed[t.ID] == 0 {
			color.New(color.FgMagenta).Printf("\n%s\n", t.Content)
			r.printed[t.ID] = len(t.Content)
		}
	}
}
