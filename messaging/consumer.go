package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopstream/user-service/metrics"
	"github.com/shopstream/user-service/services"
	"github.com/shopstream/user-service/utils"
)

// Message patterns consumed from peer services. Each pattern is its own
// durable queue.
const (
	PatternFindUserByID           = "find-user-by-id"
	PatternFindUserByEmail        = "find-user-by-email"
	PatternCreateUser             = "create-user"
	PatternFindUserWithCredential = "find-user-with-credential"
	PatternUpdateRefreshToken     = "update-refresh-token"
	PatternFindUserByIDWithToken  = "find-user-by-id-with-token"
)

// Patterns lists every queue the consumer serves.
var Patterns = []string{
	PatternFindUserByID,
	PatternFindUserByEmail,
	PatternCreateUser,
	PatternFindUserWithCredential,
	PatternUpdateRefreshToken,
	PatternFindUserByIDWithToken,
}

// Fault is the structured error carried back to peers. Callers inspect
// Status to decide retry or propagation; transport errors never cross
// this boundary.
type Fault struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Reply is the RPC response envelope: exactly one of Data or Error set.
type Reply struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Fault      `json:"error,omitempty"`
}

type idPayload struct {
	UserID uint `json:"user_id"`
}

type emailPayload struct {
	Email string `json:"email"`
}

type refreshTokenPayload struct {
	UserID       uint    `json:"user_id"`
	RefreshToken *string `json:"refresh_token"`
}

// Consumer dispatches peer messages to the account service.
type Consumer struct {
	client    *Client
	svc       *services.UserService
	collector *metrics.Collector
	wg        sync.WaitGroup
}

// NewConsumer creates a Consumer.
func NewConsumer(client *Client, svc *services.UserService, collector *metrics.Collector) *Consumer {
	return &Consumer{client: client, svc: svc, collector: collector}
}

// Start declares every pattern queue and launches one worker per queue.
// Workers drain until ctx is cancelled; Wait blocks until they finish.
func (c *Consumer) Start(ctx context.Context) error {
	for _, pattern := range Patterns {
		if err := c.client.CreateQueue(pattern); err != nil {
			return err
		}
	}
	for _, pattern := range Patterns {
		msgs, err := c.client.Consume(pattern)
		if err != nil {
			return err
		}
		c.wg.Add(1)
		go c.worker(ctx, pattern, msgs)
	}
	return nil
}

// Wait blocks until all workers have drained.
func (c *Consumer) Wait() {
	c.wg.Wait()
}

func (c *Consumer) worker(ctx context.Context, pattern string, msgs <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			utils.LogInfo("Worker for %s shutting down", pattern)
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}

			reply := c.Dispatch(pattern, d.Body)
			if c.collector != nil {
				c.collector.RecordMessage(pattern)
				if reply.Error != nil {
					c.collector.RecordFault(pattern, reply.Error.Status)
				}
			}

			if d.ReplyTo != "" {
				body, err := json.Marshal(reply)
				if err != nil {
					utils.LogError("Failed to marshal reply for %s: %v", pattern, err)
					body, _ = json.Marshal(Reply{Error: &Fault{
						Status:  http.StatusInternalServerError,
						Message: "Failed to encode reply",
					}})
				}
				if err := c.client.Reply(ctx, d.ReplyTo, d.CorrelationId, body); err != nil {
					utils.LogError("Failed to publish reply for %s: %v", pattern, err)
				}
			}

			if err := d.Ack(false); err != nil {
				utils.LogError("Failed to ack message for %s: %v", pattern, err)
			}
		}
	}
}

// Dispatch routes one message body to the service operation for its
// pattern and shapes the result as a Reply.
func (c *Consumer) Dispatch(pattern string, body []byte) Reply {
	switch pattern {
	case PatternFindUserByID:
		var p idPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return badPayload(err)
		}
		user, err := c.svc.FindByID(p.UserID)
		if err != nil {
			return faultReply(err)
		}
		return Reply{Data: user}

	case PatternFindUserByEmail:
		var p emailPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return badPayload(err)
		}
		user, err := c.svc.FindTokenByEmail(p.Email)
		if err != nil {
			return faultReply(err)
		}
		// Absence is not a fault here; existence checks expect null.
		return Reply{Data: user}

	case PatternCreateUser:
		var input services.CreateUserInput
		if err := json.Unmarshal(body, &input); err != nil {
			return badPayload(err)
		}
		user, err := c.svc.CreateUser(input)
		if err != nil {
			return faultReply(err)
		}
		return Reply{Data: user}

	case PatternFindUserWithCredential:
		var p emailPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return badPayload(err)
		}
		user, err := c.svc.FindCredentialByEmail(p.Email)
		if err != nil {
			return faultReply(err)
		}
		return Reply{Data: user}

	case PatternUpdateRefreshToken:
		var p refreshTokenPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return badPayload(err)
		}
		if err := c.svc.UpdateRefreshToken(p.UserID, p.RefreshToken); err != nil {
			return faultReply(err)
		}
		return Reply{Data: true}

	case PatternFindUserByIDWithToken:
		var p idPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return badPayload(err)
		}
		user, err := c.svc.FindTokenByID(p.UserID)
		if err != nil {
			return faultReply(err)
		}
		return Reply{Data: user}
	}

	return Reply{Error: &Fault{
		Status:  http.StatusNotFound,
		Message: "Unknown message pattern: " + pattern,
	}}
}

func badPayload(err error) Reply {
	return Reply{Error: &Fault{
		Status:  http.StatusBadRequest,
		Message: "Invalid payload: " + err.Error(),
	}}
}

func faultReply(err error) Reply {
	if appErr := utils.GetAppError(err); appErr != nil {
		return Reply{Error: &Fault{Status: appErr.Code, Message: appErr.Message}}
	}
	return Reply{Error: &Fault{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	}}
}
