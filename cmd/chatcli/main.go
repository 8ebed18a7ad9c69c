package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"chatfree/session"
)

func main() {
	baseURL := flag.String("base", "http://localhost:5000", "backend base URL")
	credsPath := flag.String("creds", defaultCredsPath(), "credentials file path")
	flag.Parse()

	creds, err := session.NewCredentialStore(*credsPath)
	if err != nil {
		log.Fatalf("credential store: %v", err)
	}

	api := session.NewClient(*baseURL)
	sess := session.NewSession(api, creds)
	ctx := context.Background()
	in := bufio.NewScanner(os.Stdin)

	stored, ok, err := creds.Load()
	if err != nil {
		log.Fatalf("load credentials: %v", err)
	}
	if ok {
		api.SetToken(stored.Token)
		fmt.Printf("Logged in as %s\n", stored.Username)
	} else {
		if err := loginFlow(ctx, api, creds, in); err != nil {
			log.Fatalf("login: %v", err)
		}
	}

	if err := sess.Load(ctx); err != nil {
		log.Fatalf("load chats: %v", err)
	}
	printChats(sess)
	printTranscript(sess)
	fmt.Println(`Type a message, or /help for commands.`)

	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/help":
			fmt.Println("/chats  /open <n>  /new  /delete <n>  /logout  /quit")
		case line == "/chats":
			printChats(sess)
		case line == "/new":
			sess.NewChat()
			fmt.Println("Started a new conversation.")
		case strings.HasPrefix(line, "/open "):
			c, ok := chatByIndex(sess, strings.TrimPrefix(line, "/open "))
			if !ok {
				fmt.Println("No such chat.")
				continue
			}
			if err := sess.SelectChat(ctx, c.ID); err != nil {
				fmt.Printf("Failed to open chat: %v\n", err)
				continue
			}
			printTranscript(sess)
		case strings.HasPrefix(line, "/delete "):
			c, ok := chatByIndex(sess, strings.TrimPrefix(line, "/delete "))
			if !ok {
				fmt.Println("No such chat.")
				continue
			}
			err := sess.DeleteChat(ctx, c.ID, confirmPrompt(in, fmt.Sprintf("Delete %q and all its messages?", c.Title)))
			if err != nil {
				fmt.Printf("Failed to delete chat: %v\n", err)
				continue
			}
			printChats(sess)
		case line == "/logout":
			if err := sess.Logout(ctx, confirmPrompt(in, "Log out?")); err != nil {
				fmt.Printf("Logout cleanup failed: %v\n", err)
			}
			if sess.State() == session.StateNoChat {
				fmt.Println("Logged out.")
				return
			}
		case line == "/quit":
			return
		default:
			if err := sess.Send(ctx, line); err != nil {
				fmt.Printf("Not sent: %v\n", err)
				continue
			}
			msgs := sess.Messages()
			if len(msgs) > 0 {
				last := msgs[len(msgs)-1]
				fmt.Printf("[%s] %s\n", last.Sender, last.Text)
			}
		}
	}
}

func loginFlow(ctx context.Context, api *session.Client, creds *session.CredentialStore, in *bufio.Scanner) error {
	if strings.EqualFold(prompt(in, "Login or register? [L/r] "), "r") {
		username := prompt(in, "Username: ")
		email := prompt(in, "Email: ")
		password := prompt(in, "Password: ")
		password2 := prompt(in, "Confirm password: ")
		if err := api.Register(ctx, username, email, password, password2); err != nil {
			return err
		}
		fmt.Println("Account created, please log in.")
	}
	email := prompt(in, "Email: ")
	password := prompt(in, "Password: ")
	logged, err := api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := creds.Save(logged); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", logged.Username)
	return nil
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

// confirmPrompt is the terminal stand-in for the confirmation modal.
func confirmPrompt(in *bufio.Scanner, question string) func() bool {
	return func() bool {
		fmt.Printf("%s [y/N] ", question)
		if !in.Scan() {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(in.Text()))
		return answer == "y" || answer == "yes"
	}
}

func chatByIndex(sess *session.Session, raw string) (session.ChatSummary, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	chats := sess.Chats()
	if err != nil || n < 1 || n > len(chats) {
		return session.ChatSummary{}, false
	}
	return chats[n-1], true
}

func printChats(sess *session.Session) {
	chats := sess.Chats()
	if len(chats) == 0 {
		fmt.Println("No chats yet.")
		return
	}
	fmt.Println("Chats (most recent last):")
	for i, c := range chats {
		marker := " "
		if c.ID == sess.ActiveChatID() {
			marker = "*"
		}
		fmt.Printf("%s %2d. %s (%d messages)\n", marker, i+1, c.Title, c.MessageCount)
	}
}

func printTranscript(sess *session.Session) {
	for _, m := range sess.Messages() {
		fmt.Printf("[%s] %s\n", m.Sender, m.Text)
	}
}

func defaultCredsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "chatfree", "credentials.json")
}
