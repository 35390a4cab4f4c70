package alerts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

func enqueue(taskType string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	task := asynq.NewTask(taskType, b)
	_, err = ensureClient().Enqueue(task, asynq.Queue("notify"))
	return err
}

// EnqueueBidPlaced notifies the farmer that a bid arrived on a listing
func EnqueueBidPlaced(farmerID, productID, buyerID string, amount float64) error {
	return enqueue(TaskBidPlaced, BidPlacedPayload{
		ProductID: productID,
		BuyerID:   buyerID,
		Amount:    amount,
		Envelope: Notification{
			UserID: farmerID,
			Type:   "bid_placed",
			Title:  "New bid on your listing",
			Body:   fmt.Sprintf("A buyer bid %.2f/kg on your listing.", amount),
			Link:   "/products/" + productID,
			SentAt: time.Now(),
		},
	})
}

// EnqueueBidOutbid notifies the previous top bidder they were surpassed
func EnqueueBidOutbid(bidderID, productID string, amount float64) error {
	return enqueue(TaskBidOutbid, BidOutbidPayload{
		ProductID: productID,
		Amount:    amount,
		Envelope: Notification{
			UserID: bidderID,
			Type:   "bid_outbid",
			Title:  "You have been outbid",
			Body:   fmt.Sprintf("Another buyer bid %.2f/kg. Place a higher bid to stay in the running.", amount),
			Link:   "/products/" + productID,
			SentAt: time.Now(),
		},
	})
}

// EnqueueBidAccepted notifies the winning buyer after acceptance commits
func EnqueueBidAccepted(buyerID, productID, orderID, orderNumber string, amount float64) error {
	return enqueue(TaskBidAccepted, BidAcceptedPayload{
		ProductID:   productID,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		Amount:      amount,
		Envelope: Notification{
			UserID: buyerID,
			Type:   "bid_accepted",
			Title:  "Your bid won",
			Body:   fmt.Sprintf("The farmer accepted your bid of %.2f/kg. Order %s has been created.", amount, orderNumber),
			Link:   "/orders/" + orderID,
			SentAt: time.Now(),
		},
	})
}

// EnqueueBiddingClosed notifies a bidder that the round ended without a winner
func EnqueueBiddingClosed(bidderID, productID string) error {
	return enqueue(TaskBiddingClosed, BiddingClosedPayload{
		ProductID: productID,
		Envelope: Notification{
			UserID: bidderID,
			Type:   "bidding_closed",
			Title:  "Bidding closed",
			Body:   "The farmer closed bidding on a listing you bid on without accepting a bid.",
			Link:   "/products/" + productID,
			SentAt: time.Now(),
		},
	})
}

// EnqueueOrderCreated notifies the farmer of a fixed-price purchase
func EnqueueOrderCreated(farmerID, orderID, orderNumber string, quantityKg, total float64) error {
	return enqueue(TaskOrderCreated, OrderCreatedPayload{
		OrderID:     orderID,
		OrderNumber: orderNumber,
		QuantityKg:  quantityKg,
		Total:       total,
		Envelope: Notification{
			UserID: farmerID,
			Type:   "order_created",
			Title:  "New order received",
			Body:   fmt.Sprintf("Order %s: %.0fkg for a total of %.2f.", orderNumber, quantityKg, total),
			Link:   "/orders/" + orderID,
			SentAt: time.Now(),
		},
	})
}

// EnqueueOrderStatusChanged notifies the buyer of order progress
func EnqueueOrderStatusChanged(buyerID, orderID, status string) error {
	return enqueue(TaskOrderStatusChanged, OrderStatusChangedPayload{
		OrderID: orderID,
		Status:  status,
		Envelope: Notification{
			UserID: buyerID,
			Type:   "order_status_changed",
			Title:  "Order update",
			Body:   fmt.Sprintf("Your order is now %s.", status),
			Link:   "/orders/" + orderID,
			SentAt: time.Now(),
		},
	})
}

// EnqueuePaymentReceived notifies the farmer after payment commits
func EnqueuePaymentReceived(farmerID, orderID, transactionID string, total float64) error {
	return enqueue(TaskPaymentReceived, PaymentReceivedPayload{
		OrderID:       orderID,
		TransactionID: transactionID,
		Total:         total,
		Envelope: Notification{
			UserID: farmerID,
			Type:   "payment_received",
			Title:  "Payment received",
			Body:   fmt.Sprintf("Payment of %.2f received (transaction %s).", total, transactionID),
			Link:   "/orders/" + orderID,
			SentAt: time.Now(),
		},
	})
}

// EnqueueInvoiceReady notifies the buyer the invoice can be downloaded
func EnqueueInvoiceReady(buyerID, orderID, invoicePath string) error {
	return enqueue(TaskInvoiceReady, InvoiceReadyPayload{
		OrderID:     orderID,
		InvoicePath: invoicePath,
		Envelope: Notification{
			UserID: buyerID,
			Type:   "invoice_ready",
			Title:  "Invoice ready",
			Body:   "Your invoice has been generated and is ready for download.",
			Link:   "/orders/" + orderID + "/invoice",
			SentAt: time.Now(),
		},
	})
}
