package ingestion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailHandler fetches resume attachments from Gmail into the staging
// directory, as an alternative ingestion source to direct upload.
type GmailHandler struct {
	service *gmail.Service
	files   *FileHandler
	logger  *zap.Logger
}

// NewGmailHandler creates a Gmail handler. credentialsPath points at the
// OAuth client credentials JSON; the user token is cached next to the
// process in token.json.
func NewGmailHandler(credentialsPath string, files *FileHandler, logger *zap.Logger) (*GmailHandler, error) {
	ctx := context.Background()

	if credentialsPath == "" {
		credentialsPath = "credentials.json"
	}

	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client, err := getClient(config)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	return &GmailHandler{
		service: srv,
		files:   files,
		logger:  logger,
	}, nil
}

// getClient retrieves a token, saves it, then returns the generated client.
func getClient(config *oauth2.Config) (*http.Client, error) {
	tokFile := "token.json"
	tok, err := tokenFromFile(tokFile)
	if err != nil {
		tok, err = getTokenFromWeb(config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokFile, tok); err != nil {
			return nil, err
		}
	}
	return config.Client(context.Background(), tok), nil
}

// getTokenFromWeb requests a token from the web.
func getTokenFromWeb(config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code: \n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := config.Exchange(context.Background(), authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// saveToken saves a token to a file path.
func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// FetchAttachments downloads PDF/DOCX attachments from messages matching
// the subject filter into the staging directory. Per-message failures are
// logged and skipped.
func (gh *GmailHandler) FetchAttachments(ctx context.Context, subject string) error {
	user := "me"
	query := fmt.Sprintf("subject:%s has:attachment", subject)

	r, err := gh.service.Users.Messages.List(user).Q(query).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to retrieve messages: %w", err)
	}

	if len(r.Messages) == 0 {
		return fmt.Errorf("no messages found with subject: %s", subject)
	}

	for _, msg := range r.Messages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		message, err := gh.service.Users.Messages.Get(user, msg.Id).Context(ctx).Do()
		if err != nil {
			gh.logger.Warn("unable to retrieve message", zap.String("id", msg.Id), zap.Error(err))
			continue
		}

		for _, part := range message.Payload.Parts {
			if part.Filename == "" || part.Body.AttachmentId == "" {
				continue
			}

			if !IsSupportedDocument(part.Filename) {
				gh.logger.Debug("skipping unsupported attachment", zap.String("filename", part.Filename))
				continue
			}

			attachment, err := gh.service.Users.Messages.Attachments.Get(user, msg.Id, part.Body.AttachmentId).Context(ctx).Do()
			if err != nil {
				gh.logger.Warn("unable to retrieve attachment", zap.String("filename", part.Filename), zap.Error(err))
				continue
			}

			data, err := base64.URLEncoding.DecodeString(attachment.Data)
			if err != nil {
				gh.logger.Warn("unable to decode attachment", zap.String("filename", part.Filename), zap.Error(err))
				continue
			}

			if _, err := gh.files.SaveUpload(part.Filename, bytes.NewReader(data)); err != nil {
				gh.logger.Warn("unable to write attachment", zap.String("filename", part.Filename), zap.Error(err))
				continue
			}

			gh.logger.Info("downloaded attachment", zap.String("filename", part.Filename))
		}
	}

	return nil
}
