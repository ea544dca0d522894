package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"video-uploader/internal/domain/dto"
)

func main() {
	server := flag.String("server", "http://localhost:3000/api/v1", "Server base URL")
	filePath := flag.String("file", "", "Video file to upload")
	title := flag.String("title", "", "Video title, defaults to the file name")
	owner := flag.String("user", "", "Owner id sent as X-User-ID")
	videoID := flag.String("id", "", "Resume an existing upload instead of starting a new one")
	chunkSize := flag.Int64("chunk-size", 8*1024*1024, "Bytes per continue request")
	flag.Parse()

	if *filePath == "" || *owner == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *chunkSize <= 0 {
		log.Fatal("chunk-size must be positive")
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("open %s: %v", *filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		log.Fatalf("stat %s: %v", *filePath, err)
	}
	totalSize := stat.Size()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	u := newUploader(*server, *owner, *chunkSize)

	id := strings.TrimSpace(*videoID)
	if id == "" {
		name := *title
		if name == "" {
			name = filepath.Base(stat.Name())
		}
		id, err = u.initiate(ctx, dto.InitiateUploadRequestDTO{Title: name, SizeBytes: totalSize})
		if err != nil {
			log.Fatalf("initiate: %v", err)
		}
	}

	fmt.Printf("Server: %s\n", *server)
	fmt.Printf("File: %s (%d bytes)\n", stat.Name(), totalSize)
	fmt.Printf("Video ID: %s (resume with -id %s)\n", id, id)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				sent := u.sent.Load()
				if totalSize > 0 {
					fmt.Printf("\rProgress: %d/%d bytes (%.1f%%)", sent, totalSize, float64(sent)*100/float64(totalSize))
				}
			}
		}
	}()

	err = u.upload(ctx, id, file, totalSize)
	close(done)
	fmt.Println()
	if err != nil {
		if ctx.Err() != nil {
			log.Fatalf("interrupted at %d bytes, resume with -id %s", u.sent.Load(), id)
		}
		log.Fatalf("upload: %v", err)
	}

	st, err := u.status(context.Background(), id)
	if err != nil {
		log.Fatalf("status: %v", err)
	}
	fmt.Printf("Upload complete: %d bytes, status %s\n", st.UploadSize, st.Status)
}
