package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/medmentor/backend/internal/client"
	"github.com/medmentor/backend/internal/conversation"
)

// chatconsole is a terminal client for exercising the conversation flow
// against a running API: type messages, upload visit recordings with
// ":record <file>", and re-ask suggested questions with ":ask <n>".
func main() {
	log.SetFlags(0)

	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	baseURL := flag.String("url", "http://localhost:5000/api", "API base URL")
	patientID := flag.String("patient", "", "patient id attached to chat requests")
	timeout := flag.Duration("timeout", 60*time.Second, "per-request timeout")
	flag.Parse()

	api := client.New(*baseURL, client.WithPatient(*patientID))
	merger := conversation.NewMerger(conversation.NewMessageLog(), api, api)

	fmt.Println("MedMentor console. Type a message, ':record <file>', ':ask <n>' or ':quit'.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == ":quit":
			merger.Wait()
			return

		case strings.HasPrefix(line, ":record "):
			path := strings.TrimSpace(strings.TrimPrefix(line, ":record "))
			audio, err := os.ReadFile(path)
			if err != nil {
				fmt.Printf("cannot read %s: %v\n", path, err)
				continue
			}
			submitAndRender(merger, *timeout, func(ctx context.Context) {
				merger.SubmitRecording(ctx, audio)
			})

		case strings.HasPrefix(line, ":ask "):
			arg := strings.TrimSpace(strings.TrimPrefix(line, ":ask "))
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println("usage: :ask <prompt number>")
				continue
			}
			id, ok := promptByIndex(merger, n)
			if !ok {
				fmt.Printf("no suggested question #%d\n", n)
				continue
			}
			submitAndRender(merger, *timeout, func(ctx context.Context) {
				merger.SelectPrompt(ctx, id)
			})

		default:
			submitAndRender(merger, *timeout, func(ctx context.Context) {
				merger.SubmitChat(ctx, line)
			})
		}
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin error: %v", err)
	}
}

func submitAndRender(merger *conversation.Merger, timeout time.Duration, submit func(context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	submit(ctx)
	merger.Wait()
	render(merger)
}

// render prints the tail of the conversation, numbering suggested questions
// so they can be selected with ":ask".
func render(merger *conversation.Merger) {
	messages := merger.Log().Messages()

	const tail = 8
	start := 0
	if len(messages) > tail {
		start = len(messages) - tail
	}

	promptIdx := 0
	for _, msg := range messages[:start] {
		if msg.IsPrompt {
			promptIdx++
		}
	}

	for _, msg := range messages[start:] {
		if msg.IsPrompt {
			promptIdx++
			fmt.Printf("  [%d] %s\n", promptIdx, msg.Content)
			continue
		}
		fmt.Printf("%s: %s\n", msg.Sender, msg.Content)
	}
}

func promptByIndex(merger *conversation.Merger, n int) (string, bool) {
	idx := 0
	for _, msg := range merger.Log().Messages() {
		if !msg.IsPrompt {
			continue
		}
		idx++
		if idx == n {
			return msg.ID, true
		}
	}
	return "", false
}
