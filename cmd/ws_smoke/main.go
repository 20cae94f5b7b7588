package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"

	"github.com/gorilla/websocket"
)

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([0-9a-f]+)"`)

func main() {
	base := flag.String("url", "http://127.0.0.1:8080", "server base url")
	username := flag.String("username", "alice", "username")
	password := flag.String("password", "Password123", "password")
	flag.Parse()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	res, err := client.PostForm(*base+"/login/", url.Values{
		"username": {*username},
		"password": {*password},
	})
	if err != nil {
		logger.Fatal("login request", "error", err)
	}
	res.Body.Close()
	if res.Request.URL.Path != "/current/" {
		logger.Fatal("login failed", "landed_on", res.Request.URL.Path)
	}

	token, err := csrfToken(client, *base+"/create/")
	if err != nil {
		logger.Fatal("read csrf token", "error", err)
	}

	u, _ := url.Parse(*base)
	header := http.Header{}
	for _, c := range jar.Cookies(u) {
		header.Add("Cookie", c.String())
	}
	wsURL := "ws" + strings.TrimPrefix(*base, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		logger.Fatal("dial ws", "error", err)
	}
	defer conn.Close()

	title := fmt.Sprintf("smoke %d", time.Now().Unix())
	res, err = client.PostForm(*base+"/create/", url.Values{
		"csrf_token": {token},
		"title":      {title},
	})
	if err != nil {
		logger.Fatal("create task", "error", err)
	}
	res.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev domain.TaskEvent
	if err := conn.ReadJSON(&ev); err != nil {
		logger.Fatal("read event", "error", err)
	}
	if ev.Type != domain.EventTaskCreated {
		logger.Fatal("unexpected event", "type", ev.Type)
	}
	fmt.Printf("received %s for task %d\n", ev.Type, ev.TaskID)
}

func csrfToken(client *http.Client, pageURL string) (string, error) {
	res, err := client.Get(pageURL)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	m := csrfPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("no csrf token on %s (status %d)", pageURL, res.StatusCode)
	}
	return string(m[1]), nil
}
