package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/auth"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/config"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/services"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/tasks"
)

// Context key type for AuthResult
type authContextKey string

const authResultKey authContextKey = "authResult"

// Helper to get AuthResult from context
func getAuthFromContext(ctx context.Context) (*AuthResult, bool) {
	val, ok := ctx.Value(authResultKey).(*AuthResult)
	return val, ok
}

// JsonApiRequest defines the expected structure for JSON API requests.
type JsonApiRequest struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// JsonApiResponse defines the structure for JSON API responses.
// Code carries the machine readable error kind; Retryable tells the client
// that re-reading the inquiry and trying again may succeed.
type JsonApiResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
}

// apiMethodFunc defines the signature for handler methods.
type apiMethodFunc func(c *gin.Context, args json.RawMessage) (interface{}, *ApiError)

// JsonApiHandler holds dependencies for handling JSON API requests.
type JsonApiHandler struct {
	cfg         *config.Config
	submission  services.ISubmissionService
	negotiation services.INegotiationService
	notifier    tasks.IInquiryNotifier
	methods     map[string]apiMethodFunc
}

// NewJsonApiHandler creates a new handler for the JSON API endpoint.
// A nil notifier disables email notifications.
func NewJsonApiHandler(
	cfg *config.Config,
	submission services.ISubmissionService,
	negotiation services.INegotiationService,
	notifier tasks.IInquiryNotifier,
) *JsonApiHandler {
	h := &JsonApiHandler{
		cfg:         cfg,
		submission:  submission,
		negotiation: negotiation,
		notifier:    notifier,
	}
	h.methods = map[string]apiMethodFunc{
		"ping":          h.ping,
		"sendInquiry":   h.sendInquiry,
		"sellerAction":  h.sellerAction,
		"buyerResponse": h.buyerResponse,
	}
	return h
}

// HandleRequest is the main entry point for POST /v1/api
func (h *JsonApiHandler) HandleRequest(c *gin.Context) {
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.sendErrorResponse(c, NewApiError("Failed to read request body"))
		return
	}

	var req JsonApiRequest
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		h.sendErrorResponse(c, NewApiError("Invalid JSON request format"))
		return
	}

	handlerFunc, ok := h.methods[req.Method]
	if !ok {
		h.sendErrorResponse(c, NewApiError(fmt.Sprintf("Unknown method: %s", req.Method)))
		return
	}

	if authErr := h.checkAuthForMethod(c, req.Method); authErr != nil {
		h.sendErrorResponse(c, authErr)
		return
	}

	if h.cfg != nil && h.cfg.RequestTimeout > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
	}

	result, apiErr := handlerFunc(c, req.Arguments)
	if apiErr != nil {
		h.sendErrorResponse(c, apiErr)
		return
	}

	h.sendSuccessResponse(c, result)
}

// AuthResult holds the authenticated caller.
type AuthResult struct {
	UserID string
	Role   models.Role
}

// checkAuthForMethod checks if auth is needed and validates/extracts details if so.
// It stores the AuthResult in c.Request.Context().
func (h *JsonApiHandler) checkAuthForMethod(c *gin.Context, method string) *ApiError {
	requiredRole, needsAuth := h.methodRequiresRole(method)
	if !needsAuth {
		return nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return NewApiErrorWithCode("Authorization header required", codeUnauthorized)
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return NewApiErrorWithCode("Authorization header format must be Bearer {token}", codeUnauthorized)
	}
	claims, err := auth.ValidateJWT(parts[1], h.cfg.JwtSecret)
	if err != nil {
		log.Printf("DEBUG: Token validation failed for method %s: %v", method, err)
		return NewApiErrorWithCode(fmt.Sprintf("Invalid or expired token: %v", err), codeUnauthorized)
	}

	if claims.Role != requiredRole {
		log.Printf("DEBUG: Method %s requires role %s, caller %s has %s", method, requiredRole, claims.UserID, claims.Role)
		return NewApiErrorWithCode(fmt.Sprintf("Only a %s can call %s", requiredRole, method), string(services.KindForbidden))
	}

	authRes := &AuthResult{UserID: claims.UserID, Role: claims.Role}
	ctx := context.WithValue(c.Request.Context(), authResultKey, authRes)
	c.Request = c.Request.WithContext(ctx)
	return nil
}

// methodRequiresRole returns the role a method is restricted to.
// Methods not listed are public.
func (h *JsonApiHandler) methodRequiresRole(method string) (models.Role, bool) {
	switch method {
	case "sendInquiry", "buyerResponse":
		return models.RoleBuyer, true
	case "sellerAction":
		return models.RoleSeller, true
	default:
		return "", false
	}
}

// --- Private helper methods ---

func (h *JsonApiHandler) sendSuccessResponse(c *gin.Context, data interface{}) {
	resp := JsonApiResponse{Success: true, Data: data}
	c.JSON(http.StatusOK, resp)
}

func (h *JsonApiHandler) sendErrorResponse(c *gin.Context, apiErr *ApiError) {
	resp := JsonApiResponse{
		Success:   false,
		Error:     apiErr.Message,
		Code:      apiErr.Code,
		Retryable: apiErr.Retryable,
	}
	c.JSON(http.StatusOK, resp)
}

func (h *JsonApiHandler) ping(c *gin.Context, _ json.RawMessage) (interface{}, *ApiError) {
	return "pong", nil
}

const codeUnauthorized = "unauthorized"

type ApiError struct {
	Message   string
	Code      string
	Retryable bool
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(message string) *ApiError {
	return &ApiError{Message: message}
}

func NewApiErrorWithCode(message, code string) *ApiError {
	return &ApiError{Message: message, Code: code}
}

// apiErrorFromService converts a service error into the client facing form.
// Store failures are logged and reported without their cause.
func apiErrorFromService(method string, err error) *ApiError {
	var inqErr *services.InquiryError
	if !errors.As(err, &inqErr) {
		log.Printf("ERROR: %s failed: %v", method, err)
		return NewApiError("Internal error")
	}
	apiErr := &ApiError{
		Message:   inqErr.Message,
		Code:      string(inqErr.Kind),
		Retryable: services.IsRetryable(err),
	}
	if inqErr.Kind == services.KindStoreUnavailable {
		log.Printf("ERROR: %s failed: %v", method, err)
		apiErr.Message = "Service temporarily unavailable, please try again"
	}
	return apiErr
}

// parseRequiredSingleArgFromArray unmarshals the first element of the
// 'arguments' array into targetVarPtr.
func (h *JsonApiHandler) parseRequiredSingleArgFromArray(rawArgPayload json.RawMessage, targetVarPtr interface{}) *ApiError {
	var argArray []json.RawMessage
	if rawArgPayload == nil {
		return NewApiError("Missing 'arguments' field; expected a JSON array with one argument.")
	}

	if err := json.Unmarshal(rawArgPayload, &argArray); err != nil {
		return NewApiError("Invalid 'arguments': expected a JSON array.")
	}

	if len(argArray) == 0 {
		return NewApiError("Invalid 'arguments': array is empty, but one argument is expected.")
	}

	if err := json.Unmarshal(argArray[0], targetVarPtr); err != nil {
		return NewApiError("Invalid format for argument: the first element in 'arguments' array has unexpected structure.")
	}
	return nil
}

// SendInquiryArgs defines the arguments for the sendInquiry method.
type SendInquiryArgs struct {
	PropertyID string             `json:"property_id"`
	Kind       models.InquiryKind `json:"kind"`
	Message    string             `json:"message"`
	Requested  *models.Slot       `json:"requested,omitempty"`
}

// sendInquiry opens a message or appointment inquiry for the calling buyer.
func (h *JsonApiHandler) sendInquiry(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	authInfo, ok := getAuthFromContext(c.Request.Context())
	if !ok {
		return nil, NewApiErrorWithCode("Authentication required", codeUnauthorized)
	}

	var reqArgs SendInquiryArgs
	if apiErr := h.parseRequiredSingleArgFromArray(args, &reqArgs); apiErr != nil {
		return nil, apiErr
	}

	ctx := c.Request.Context()
	inq, err := h.submission.Submit(ctx, services.SubmitInquiryInput{
		BuyerID:    authInfo.UserID,
		PropertyID: reqArgs.PropertyID,
		Kind:       reqArgs.Kind,
		Message:    reqArgs.Message,
		Requested:  reqArgs.Requested,
	})
	if err != nil {
		return nil, apiErrorFromService("sendInquiry", err)
	}

	if h.notifier != nil {
		if err := h.notifier.InquirySubmitted(ctx, inq); err != nil {
			log.Printf("WARN: inquiry %s saved but seller notification failed: %v", inq.ID, err)
		}
	}
	return inq, nil
}

// InquiryActionArgs defines the arguments for sellerAction and buyerResponse.
type InquiryActionArgs struct {
	InquiryID string        `json:"inquiry_id"`
	Action    models.Action `json:"action"`
	services.ActionPayload
}

func (h *JsonApiHandler) sellerAction(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	return h.applyAction(c, args, "sellerAction", h.negotiation.SellerAction)
}

func (h *JsonApiHandler) buyerResponse(c *gin.Context, args json.RawMessage) (interface{}, *ApiError) {
	return h.applyAction(c, args, "buyerResponse", h.negotiation.BuyerResponse)
}

type actionFunc func(ctx context.Context, inquiryID, userID string, action models.Action, payload services.ActionPayload) (*models.Inquiry, error)

func (h *JsonApiHandler) applyAction(c *gin.Context, args json.RawMessage, method string, apply actionFunc) (interface{}, *ApiError) {
	authInfo, ok := getAuthFromContext(c.Request.Context())
	if !ok {
		return nil, NewApiErrorWithCode("Authentication required", codeUnauthorized)
	}

	var reqArgs InquiryActionArgs
	if apiErr := h.parseRequiredSingleArgFromArray(args, &reqArgs); apiErr != nil {
		return nil, apiErr
	}
	if strings.TrimSpace(reqArgs.InquiryID) == "" {
		return nil, NewApiErrorWithCode("inquiry_id is required", string(services.KindValidation))
	}

	ctx := c.Request.Context()
	inq, err := apply(ctx, reqArgs.InquiryID, authInfo.UserID, reqArgs.Action, reqArgs.ActionPayload)
	if err != nil {
		return nil, apiErrorFromService(method, err)
	}

	if h.notifier != nil {
		if err := h.notifier.InquiryUpdated(ctx, inq); err != nil {
			log.Printf("WARN: inquiry %s updated but notification failed: %v", inq.ID, err)
		}
	}
	return inq, nil
}
