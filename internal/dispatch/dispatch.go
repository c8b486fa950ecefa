// Package dispatch routes a chat request to exactly one capability and
// shapes its outcome into the reply envelope.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carsales-backend/internal/capability"
	"carsales-backend/internal/models"
)

type Intent int

const (
	IntentChat Intent = iota
	IntentWebSearch
	IntentFunctionCall
	IntentDatabaseQuery
	IntentSimilarCar
)

func (i Intent) String() string {
	switch i {
	case IntentWebSearch:
		return "web_search"
	case IntentFunctionCall:
		return "function_call"
	case IntentDatabaseQuery:
		return "database_query"
	case IntentSimilarCar:
		return "similar_car"
	default:
		return "chat"
	}
}

// Resolve picks the intent of a request. When several flags are set only the
// first in this order counts: langchain search, function call, database
// query, similar car query. No flag means plain chat.
func Resolve(req *models.ChatRequest) Intent {
	switch {
	case req.IsLangchainSearch:
		return IntentWebSearch
	case req.IsFunctionCall:
		return IntentFunctionCall
	case req.IsDatabaseQuery:
		return IntentDatabaseQuery
	case req.IsSimilarCarQuery:
		return IntentSimilarCar
	default:
		return IntentChat
	}
}

// Capabilities is the routing table. A nil entry means the capability is
// not configured.
type Capabilities struct {
	Chat          capability.Capability
	WebSearch     capability.Capability
	FunctionCall  capability.Capability
	DatabaseQuery capability.Capability
	SimilarCar    capability.Capability
}

func (c Capabilities) For(intent Intent) capability.Capability {
	switch intent {
	case IntentWebSearch:
		return c.WebSearch
	case IntentFunctionCall:
		return c.FunctionCall
	case IntentDatabaseQuery:
		return c.DatabaseQuery
	case IntentSimilarCar:
		return c.SimilarCar
	default:
		return c.Chat
	}
}

// ReplyHook observes every successful reply, e.g. to prefetch audio.
type ReplyHook func(reply *models.ChatReply)

type Dispatcher struct {
	caps    Capabilities
	logger  *zap.Logger
	onReply ReplyHook
	newID   func() (uuid.UUID, error)
}

func New(caps Capabilities, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		caps:   caps,
		logger: logger,
		newID:  uuid.NewUUID,
	}
}

// OnReply registers a hook called after each successful dispatch.
func (d *Dispatcher) OnReply(hook ReplyHook) {
	d.onReply = hook
}

// Dispatch invokes the capability for the request's intent. Every capability
// error is caught here; the returned error is always a *capability.Error.
func (d *Dispatcher) Dispatch(ctx context.Context, req *models.ChatRequest) (*models.ChatReply, error) {
	intent := Resolve(req)
	capab := d.caps.For(intent)
	if capab == nil {
		return nil, capability.Unavailable(intent.String(), errors.New("capability is not configured"))
	}

	res, err := capab.Invoke(ctx, req.PromptMessageList)
	if err != nil {
		d.logger.Error("capability failed",
			zap.String("intent", intent.String()),
			zap.String("capability", capab.Name()),
			zap.String("code", capability.KindOf(err).Code()),
			zap.Error(err),
		)
		var ce *capability.Error
		if !errors.As(err, &ce) {
			err = capability.Upstream(capab.Name(), err)
		}
		return nil, err
	}
	if res == nil {
		return nil, capability.Malformed(capab.Name(), errors.New("empty result"))
	}

	reply, err := d.normalize(intent, res)
	if err != nil {
		return nil, capability.Upstream(capab.Name(), err)
	}

	if d.onReply != nil {
		d.onReply(reply)
	}
	return reply, nil
}

func (d *Dispatcher) normalize(intent Intent, res *capability.Result) (*models.ChatReply, error) {
	if res.Shaped {
		return shaped(res), nil
	}

	id := res.ID
	if intent != IntentChat || id == "" {
		u, err := d.newID()
		if err != nil {
			return nil, fmt.Errorf("generate reply id: %w", err)
		}
		id = u.String()
	}

	return &models.ChatReply{
		Response: &models.ReplyMessage{Message: res.Message, ID: id},
		Images:   res.Images,
	}, nil
}

// shaped passes through a result the adapter already normalized. A result
// carrying an error keeps its images and drops the response.
func shaped(res *capability.Result) *models.ChatReply {
	if res.Error != "" {
		return &models.ChatReply{Images: res.Images, Error: res.Error}
	}
	return &models.ChatReply{
		Response: &models.ReplyMessage{Message: res.Message, ID: res.ID},
		Images:   res.Images,
	}
}

// ErrorReply converts a dispatch error into the error envelope.
func ErrorReply(err error) *models.ChatReply {
	return &models.ChatReply{
		Error: err.Error(),
		Code:  capability.KindOf(err).Code(),
	}
}

// StatusFor maps a dispatch error to its HTTP status.
func StatusFor(err error) int {
	switch capability.KindOf(err) {
	case 0:
		return http.StatusOK
	case capability.KindInvalidRequest:
		return http.StatusBadRequest
	case capability.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
