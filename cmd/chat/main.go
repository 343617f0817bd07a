package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	serverURL = flag.String("server", "http://localhost:8000", "Backend server URL")
	timeout   = flag.Duration("timeout", 60*time.Second, "Request timeout")
)

type askResponse struct {
	Answer string `json:"answer"`
	Images []struct {
		ImagePath string  `json:"image_path"`
		Score     float64 `json:"score"`
		Page      int     `json:"page"`
		PDFURL    string  `json:"pdf_url"`
	} `json:"images"`
	Error string `json:"error"`
}

func main() {
	flag.Parse()

	client := &http.Client{Timeout: *timeout}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Println(boldGreen("Remodela Catalog Chat"))
	fmt.Printf("Server: %s\n", boldCyan(*serverURL))
	fmt.Println("Type your question and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	// One session for the whole run so follow-up questions stay coherent.
	sessionID, err := createSession(client, *serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not create a session (%v), falling back to one-shot questions\n", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.ToLower(question) == "exit" {
			break
		}

		resp, err := ask(client, *serverURL, sessionID, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Print(boldCyan("Assistant: "))
		fmt.Println(resp.Answer)
		for _, img := range resp.Images {
			line := fmt.Sprintf("  [%.2f] %s (page %d)", img.Score, img.ImagePath, img.Page)
			if img.PDFURL != "" {
				line += " " + img.PDFURL
			}
			fmt.Println(yellow(line))
		}
		fmt.Println()
	}
}

func createSession(client *http.Client, baseURL string) (string, error) {
	body, _ := json.Marshal(map[string]string{"title": "CLI Chat"})
	resp, err := client.Post(baseURL+"/api/v1/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var session struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", err
	}
	return session.ID, nil
}

func ask(client *http.Client, baseURL, sessionID, question string) (*askResponse, error) {
	url := baseURL + "/api/v1/ask"
	if sessionID != "" {
		url = fmt.Sprintf("%s/api/v1/sessions/%s/ask", baseURL, sessionID)
	}

	body, _ := json.Marshal(map[string]string{"question": question})
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed askResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != "" {
			return nil, fmt.Errorf("%s", parsed.Error)
		}
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return &parsed, nil
}
