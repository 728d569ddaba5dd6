package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/verimetr/verimetr-api/internal/config"
)

type MessageType string

const (
	MessageTypeProtocol MessageType = "PROTOCOL"
	MessageTypeReport   MessageType = "REPORT"
)

// Message is a document generation job. Protocol jobs render the
// verification certificate for a single entry; report jobs export a
// company-wide registry for a date range.
type Message struct {
	Type           MessageType `json:"type"`
	CompanyID      string      `json:"company_id"`
	VerificationID string      `json:"verification_id,omitempty"`
	PeriodFrom     time.Time   `json:"period_from,omitempty"`
	PeriodTo       time.Time   `json:"period_to,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

type ReceivedMessage struct {
	Message       Message
	ReceiptHandle *string
}

type SQSService struct {
	client       *sqs.Client
	docsQueueURL string
}

func NewSQSService(client *sqs.Client, config *config.SQSConfig) *SQSService {
	return &SQSService{
		client:       client,
		docsQueueURL: config.DocsQueueURL,
	}
}

func (s *SQSService) DocsQueueURL() string {
	return s.docsQueueURL
}

func (s *SQSService) SendProtocolMessage(ctx context.Context, companyID, verificationID string) error {
	msg := Message{
		Type:           MessageTypeProtocol,
		CompanyID:      companyID,
		VerificationID: verificationID,
		Timestamp:      time.Now(),
	}

	return s.sendMessage(ctx, msg, s.docsQueueURL)
}

func (s *SQSService) SendReportMessage(ctx context.Context, companyID string, from, to time.Time) error {
	msg := Message{
		Type:       MessageTypeReport,
		CompanyID:  companyID,
		PeriodFrom: from,
		PeriodTo:   to,
		Timestamp:  time.Now(),
	}

	return s.sendMessage(ctx, msg, s.docsQueueURL)
}

func (s *SQSService) sendMessage(ctx context.Context, msg Message, queueURL string) error {
	msgBody, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	input := &sqs.SendMessageInput{
		MessageBody: aws.String(string(msgBody)),
		QueueUrl:    aws.String(queueURL),
	}

	_, err = s.client.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (s *SQSService) ReceiveMessages(ctx context.Context, queueURL string, maxMessages int32, waitTimeSeconds int32) ([]ReceivedMessage, error) {
	input := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: maxMessages,
		WaitTimeSeconds:     waitTimeSeconds,
	}

	output, err := s.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	var messages []ReceivedMessage
	for _, msg := range output.Messages {
		var message Message
		if err := json.Unmarshal([]byte(*msg.Body), &message); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		messages = append(messages, ReceivedMessage{
			Message:       message,
			ReceiptHandle: msg.ReceiptHandle,
		})
	}

	return messages, nil
}

func (s *SQSService) DeleteMessage(ctx context.Context, queueURL string, receiptHandle *string) error {
	input := &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: receiptHandle,
	}

	_, err := s.client.DeleteMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}
