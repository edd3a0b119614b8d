package controllers

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/advisernote/advisernote/app/models"
	"github.com/advisernote/advisernote/app/repository"
	"github.com/advisernote/advisernote/internal/pkg/database"
	"github.com/advisernote/advisernote/internal/pkg/env"
	"github.com/advisernote/advisernote/internal/pkg/payfast"
	"github.com/advisernote/advisernote/internal/pkg/session"
	"github.com/advisernote/advisernote/internal/pkg/subscription"
	"github.com/advisernote/advisernote/internal/pkg/usercontext"
)

var (
	payfastCheckout *payfast.Checkout
	payfastClient   *payfast.Client

	subscriptionService func() *subscription.Service
)

// InitializePaymentController builds the long-lived provider clients once at
// process start; handlers never construct their own.
func InitializePaymentController() {
	payfastCheckout = payfast.NewCheckoutFromEnv()
	payfastClient = payfast.NewClientFromEnv()
	subscriptionService = func() *subscription.Service {
		return subscription.NewServiceFromDB(database.GetDB())
	}
}

type checkoutRequest struct {
	Amount   string `json:"amount"`
	ItemName string `json:"itemName"`
}

// HandleCreateCheckout builds the signed parameter set for PayFast's hosted
// payment page. The browser performs the redirect.
func HandleCreateCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Please log in")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	params, signature, err := payfastCheckout.Build(user, req.Amount, req.ItemName)
	switch err {
	case nil:
	case payfast.ErrInvalidInput:
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Amount and item name required")
	case payfast.ErrNotConfigured:
		log.Print("checkout: payfast merchant credentials not configured")
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Payment provider not configured")
	default:
		log.Printf("checkout build failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create checkout")
	}

	return c.JSON(fiber.Map{
		"data":      params,
		"signature": signature,
		"url":       payfastCheckout.ProcessURL,
	})
}

// HandlePayfastITN receives PayFast's asynchronous server-to-server payment
// notification and reconciles subscription state.
//
// Acknowledgement policy: the endpoint answers 200 for every processing
// outcome, including signature failures, because PayFast redelivers until it
// sees a 2xx. Failures are logged and recorded in the event ledger for
// manual reconciliation. The only non-2xx is a missing merchant credential
// on our side.
func HandlePayfastITN(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.Body()...)

	merchantID := env.GetEnv("PAYFAST_MERCHANT_ID", "")
	passphrase := env.GetEnv("PAYFAST_PASSPHRASE", "")
	if merchantID == "" {
		log.Print("payfast itn: merchant id not configured")
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Server misconfigured")
	}

	params, err := payfast.ParseNotification(c.Get(fiber.HeaderContentType), rawBody)
	if err != nil {
		log.Printf("payfast itn: unreadable body: %v", err)
		return c.JSON(fiber.Map{"ok": true})
	}

	svc := subscriptionService()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	signatureValid := false
	if params[payfast.FieldMerchantID] != merchantID {
		log.Print("payfast itn: merchant id mismatch")
	} else if ok, err := payfast.VerifySignature(params, passphrase); err != nil {
		log.Printf("payfast itn: malformed notification: %v", err)
	} else if !ok {
		log.Print("payfast itn: invalid signature")
	} else {
		signatureValid = true
	}

	status := strings.TrimSpace(params[payfast.FieldPaymentStatus])
	// PayFast keeps pf_payment_id stable across status transitions, so the
	// ledger keys each (payment, status) pair. A PENDING is a different event
	// than the COMPLETE that follows it.
	eventKey := strings.TrimSpace(params[payfast.FieldPFPaymentID])
	if eventKey != "" {
		eventKey = eventKey + ":" + status
	}
	created, stored, err := svc.RecordEvent(ctx, subscription.EventInput{
		Provider:        models.PaymentProviderPayfast,
		ProviderEventID: eventKey,
		EventType:       "itn:" + status,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		log.Printf("payfast itn: event persist failed: %v", err)
		return c.JSON(fiber.Map{"ok": true})
	}
	if !created {
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = svc.MarkProcessed(ctx, stored.ID, errInvalidSignature)
		return c.JSON(fiber.Map{"ok": true})
	}

	// Server-side double-check with the provider, production only.
	if env.IsProd() {
		if err := payfastClient.Validate(ctx, params); err != nil {
			log.Printf("payfast itn: provider validation failed: %v", err)
			_ = svc.MarkProcessed(ctx, stored.ID, err)
			return c.JSON(fiber.Map{"ok": true})
		}
	}

	userID, err := strconv.ParseUint(payfast.CorrelationUserID(params), 10, 64)
	if err != nil {
		log.Print("payfast itn: missing or invalid user correlation field")
		_ = svc.MarkProcessed(ctx, stored.ID, errMissingUserID)
		return c.JSON(fiber.Map{"ok": true})
	}

	outcome, applyErr := svc.Apply(ctx, subscription.Notification{
		Provider:  models.PaymentProviderPayfast,
		UserID:    uint(userID),
		Status:    payfastStatus(status),
		PaymentID: strings.TrimSpace(params[payfast.FieldPFPaymentID]),
	})
	_ = svc.MarkProcessed(ctx, stored.ID, applyErr)
	if applyErr != nil {
		// Deliberate at-least-once semantics: acknowledge and leave the
		// ledger entry for manual reconciliation.
		log.Printf("payfast itn: store update failed for user %d: %v", userID, applyErr)
		return c.JSON(fiber.Map{"ok": true})
	}

	log.Printf("payfast itn: %s for user %d -> %s", status, userID, outcome)
	return c.JSON(fiber.Map{"ok": true})
}

// HandlePayfastReturn verifies the browser return redirect from the hosted
// payment page and sends the user back into the app.
func HandlePayfastReturn(c *fiber.Ctx) error {
	params := map[string]string{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		params[string(key)] = string(value)
	})

	passphrase := env.GetEnv("PAYFAST_PASSPHRASE", "")
	ok, err := payfast.VerifySignature(params, passphrase)
	if err != nil || !ok {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Payment verification failed"}).Redirect("/pricing")
	}

	// Drop the cached subscription flag so the dashboard recomputes it.
	if sess, err := session.GetSessionStore().Get(c); err == nil {
		sess.Delete(USER_SUBSCRIBED)
		_ = sess.Save()
	}

	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Payment received, thank you!"}).Redirect("/dashboard")
}

// payfastStatus maps PayFast's wire vocabulary onto the reconciler's.
func payfastStatus(status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case payfast.StatusComplete:
		return subscription.StatusComplete
	case payfast.StatusFailed:
		return subscription.StatusFailed
	case payfast.StatusCancelled:
		return subscription.StatusCancelled
	default:
		return strings.ToLower(strings.TrimSpace(status))
	}
}

// webhookEvent is the generic provider's JSON event envelope.
type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		ID         string `json:"id"`
		CustomerID string `json:"customer_id"`
		Metadata   struct {
			UserID string `json:"user_id"`
		} `json:"metadata"`
	} `json:"data"`
}

// HandlePaymentWebhook receives subscription lifecycle events from the
// generic payment provider. Unlike the ITN endpoint this provider expects a
// non-2xx when the endpoint cannot authenticate the event, so an invalid
// HMAC answers 401.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.Body()...)
	signature := strings.TrimSpace(c.Get("X-Payment-Signature"))
	secret := env.GetEnv("PAYMENT_WEBHOOK_SECRET", "")

	svc := subscriptionService()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var event webhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid event payload")
	}

	signatureValid := subscription.VerifyWebhookSignature(rawBody, signature, secret)
	created, stored, err := svc.RecordEvent(ctx, subscription.EventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: event.ID,
		EventType:       event.Type,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		log.Printf("payment webhook: event persist failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Event persistence failed")
	}
	if !created {
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = svc.MarkProcessed(ctx, stored.ID, errInvalidSignature)
		return jsonError(c, fiber.StatusUnauthorized, "invalid_signature", "Signature verification failed")
	}

	status := ""
	switch event.Type {
	case "customer.subscription.created", "charge.succeeded":
		status = subscription.StatusComplete
	case "customer.subscription.deleted", "charge.refunded":
		status = subscription.StatusRevoked
	default:
		_ = svc.MarkProcessed(ctx, stored.ID, nil)
		return c.JSON(fiber.Map{"ok": true, "ignored": true})
	}

	correlation := event.Data.Metadata.UserID
	if correlation == "" {
		correlation = event.Data.CustomerID
	}
	userID, err := strconv.ParseUint(strings.TrimSpace(correlation), 10, 64)
	if err != nil {
		_ = svc.MarkProcessed(ctx, stored.ID, errMissingUserID)
		return c.JSON(fiber.Map{"ok": true, "ignored": true})
	}

	_, applyErr := svc.Apply(ctx, subscription.Notification{
		Provider:       models.PaymentProviderStripe,
		UserID:         uint(userID),
		Status:         status,
		SubscriptionID: event.Data.ID,
	})
	_ = svc.MarkProcessed(ctx, stored.ID, applyErr)
	if applyErr != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Subscription update failed")
	}

	return c.JSON(fiber.Map{"ok": true})
}

type adminSubscriptionRequest struct {
	UserID     uint  `json:"user_id"`
	Subscribed *bool `json:"subscribed"`
}

// HandleAdminSubscriptionUpdate is the administrative grant/revoke path.
func HandleAdminSubscriptionUpdate(c *fiber.Ctx) error {
	var req adminSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.UserID == 0 || req.Subscribed == nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "user_id and subscribed required")
	}

	repo := repository.GetGlobalFactory().GetProfileRepository()
	profile, err := repo.GetOrCreateByUserID(req.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load profile")
	}

	profile.Subscribed = *req.Subscribed
	if !*req.Subscribed {
		profile.SubscriptionExpiresAt = nil
	}
	if err := repo.Save(profile); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update profile")
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}
