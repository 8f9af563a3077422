// seed_evaluations.go posts every problem file in a directory to a running
// fuzzyrank server so the run archive has something to browse.
//
// Usage:
//
//	go run scripts/seed_evaluations.go -dir ./problems -api http://localhost:8700
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var problemExt = map[string]string{
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".json": "application/json",
}

func main() {
	dir := flag.String("dir", "problems", "directory of problem files (.yaml, .yml, .json)")
	apiURL := flag.String("api", "http://localhost:8700", "fuzzyrank API base URL")
	clientID := flag.String("client", "seed", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "list files without posting")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("read %s: %v", *dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := problemExt[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			files = append(files, filepath.Join(*dir, e.Name()))
		}
	}
	sort.Strings(files)
	log.Printf("found %d problem files in %s", len(files), *dir)

	if *dryRun {
		for i, f := range files {
			fmt.Printf("[%d] %s\n", i+1, f)
		}
		return
	}

	client := &http.Client{}
	archived, evaluated, failed := 0, 0, 0
	for _, f := range files {
		body, err := os.ReadFile(f)
		if err != nil {
			log.Printf("skip %s: %v", f, err)
			failed++
			continue
		}
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/evaluations", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %s: %v", f, err)
			failed++
			continue
		}
		req.Header.Set("Content-Type", problemExt[strings.ToLower(filepath.Ext(f))])
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %s: %v", f, err)
			failed++
			continue
		}
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			archived++
		case http.StatusOK:
			// Server runs without an archive.
			evaluated++
		default:
			log.Printf("skip %s: status %d: %s", f, resp.StatusCode, strings.TrimSpace(string(msg)))
			failed++
		}
	}

	log.Printf("done: %d archived, %d evaluated without archive, %d failed", archived, evaluated, failed)
}
