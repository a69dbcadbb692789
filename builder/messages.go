/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package builder assembles outbound FIX 4.4 application and session-admin
// messages. Every builder here returns wire-ready bytes from a
// fixcodec.Builder rather than a quickfix.Message: the session layer owns
// framing and sequencing directly over raw bytes (spec C3/C5), so there is
// no quickfix.Session to hand a quickfix.Message to. The teacher's
// field-by-field construction style survives unchanged; only the
// destination type does not.
package builder

import (
	"strconv"
	"time"

	"github.com/nyx-systems/fixcore/constants"
	"github.com/nyx-systems/fixcore/fixcodec"
)

func header(msgType, senderCompID, targetCompID string, seqNum int) *fixcodec.Builder {
	b := fixcodec.NewBuilder(constants.FixBeginString)
	b.Set(35, msgType)
	b.SetInt(34, int64(seqNum))
	b.Set(49, senderCompID)
	b.Set(56, targetCompID)
	b.Set(52, time.Now().UTC().Format(constants.FixTimeFormat))
	return b
}

// --- Session-admin messages (spec C5) ---

// BuildLogon creates a Logon (A) message. resetSeqNum requests both sides
// reset sequence numbers to 1 (tag 141=Y), used on the first logon of a
// trading day or after a manual reset.
func BuildLogon(senderCompID, targetCompID, username, password string, seqNum, heartBtInt int, resetSeqNum bool) []byte {
	b := header(constants.MsgTypeLogon, senderCompID, targetCompID, seqNum)
	b.Set(int(constants.TagEncryptMethod), constants.EncryptMethodNone)
	b.SetInt(int(constants.TagHeartBtInt), int64(heartBtInt))
	if resetSeqNum {
		b.Set(int(constants.TagResetSeqNumFlag), constants.ResetSeqYes)
	}
	if username != "" {
		b.Set(int(constants.TagUsername), username)
	}
	if password != "" {
		b.Set(int(constants.TagPassword), password)
	}
	return b.Build()
}

// BuildLogout creates a Logout (5) message, optionally carrying a reason.
func BuildLogout(senderCompID, targetCompID, text string, seqNum int) []byte {
	b := header(constants.MsgTypeLogout, senderCompID, targetCompID, seqNum)
	if text != "" {
		b.Set(int(constants.TagText), text)
	}
	return b.Build()
}

// BuildHeartbeat creates a Heartbeat (0), echoing testReqID when sent in
// response to a TestRequest (spec C5 "test request / heartbeat cycle").
func BuildHeartbeat(senderCompID, targetCompID, testReqID string, seqNum int) []byte {
	b := header(constants.MsgTypeHeartbeat, senderCompID, targetCompID, seqNum)
	if testReqID != "" {
		b.Set(int(constants.TagTestReqID), testReqID)
	}
	return b.Build()
}

// BuildTestRequest creates a TestRequest (1), used to probe a suspiciously
// quiet connection before declaring it down.
func BuildTestRequest(senderCompID, targetCompID, testReqID string, seqNum int) []byte {
	b := header(constants.MsgTypeTestRequest, senderCompID, targetCompID, seqNum)
	b.Set(int(constants.TagTestReqID), testReqID)
	return b.Build()
}

// BuildResendRequest creates a ResendRequest (2) spanning [beginSeqNo,
// endSeqNo]. endSeqNo of 0 means "resend through the current end of stream"
// per FIX convention.
func BuildResendRequest(senderCompID, targetCompID string, seqNum, beginSeqNo, endSeqNo int) []byte {
	b := header(constants.MsgTypeResendRequest, senderCompID, targetCompID, seqNum)
	b.SetInt(int(constants.TagBeginSeqNo), int64(beginSeqNo))
	b.SetInt(int(constants.TagEndSeqNo), int64(endSeqNo))
	return b.Build()
}

// BuildSequenceReset creates a SequenceReset (4). When gapFill is true the
// message plugs a hole in the sequence (GapFillFlag=Y, PossDupFlag=Y);
// otherwise it is a hard reset to newSeqNo.
func BuildSequenceReset(senderCompID, targetCompID string, seqNum, newSeqNo int, gapFill bool) []byte {
	b := header(constants.MsgTypeSequenceReset, senderCompID, targetCompID, seqNum)
	if gapFill {
		b.Set(int(constants.TagPossDupFlag), constants.PossDupYes)
		b.Set(int(constants.TagGapFillFlag), constants.GapFillYes)
	}
	b.SetInt(int(constants.TagNewSeqNo), int64(newSeqNo))
	return b.Build()
}

// BuildReject creates a session-level Reject (3) referencing the offending
// tag/message type and reason, per spec §7 "protocol violation" handling.
func BuildReject(senderCompID, targetCompID string, seqNum, refSeqNum int, refTagID int, refMsgType, reason, text string) []byte {
	b := header(constants.MsgTypeReject, senderCompID, targetCompID, seqNum)
	b.SetInt(int(constants.TagRefSeqNum), int64(refSeqNum))
	if refTagID != 0 {
		b.SetInt(int(constants.TagRefTagID), int64(refTagID))
	}
	if refMsgType != "" {
		b.Set(int(constants.TagRefMsgType), refMsgType)
	}
	if reason != "" {
		b.Set(int(constants.TagSessionRejectReason), reason)
	}
	if text != "" {
		b.Set(int(constants.TagText), text)
	}
	return b.Build()
}

// --- Market Data Request (V) ---

// BuildMarketDataRequest creates a Market Data Request (V) subscribing (or
// unsubscribing) to the given symbols at the given depth and entry types.
func BuildMarketDataRequest(
	senderCompID, targetCompID, mdReqID string,
	symbols []string,
	subscriptionRequestType string,
	marketDepth int,
	mdEntryTypes []string,
	seqNum int,
) []byte {
	b := header(constants.MsgTypeMarketDataRequest, senderCompID, targetCompID, seqNum)
	b.Set(int(constants.TagMdReqId), mdReqID)
	b.Set(int(constants.TagSubscriptionRequestType), subscriptionRequestType)
	b.SetInt(int(constants.TagMarketDepth), int64(marketDepth))
	if subscriptionRequestType == constants.SubscriptionRequestTypeSubscribe {
		b.Set(int(constants.TagMdUpdateType), constants.MdUpdateTypeIncremental)
	}

	b.SetInt(int(constants.TagNoMdEntryTypes), int64(len(mdEntryTypes)))
	for _, et := range mdEntryTypes {
		b.Set(int(constants.TagMdEntryType), et)
	}

	b.SetInt(int(constants.TagNoRelatedSym), int64(len(symbols)))
	for _, sym := range symbols {
		b.Set(int(constants.TagSymbol), sym)
	}
	return b.Build()
}

// --- New Order Single (D) ---

// NewOrderParams contains parameters for creating a new order.
type NewOrderParams struct {
	Account        string // Portfolio/account identifier (required)
	ClOrdID        string // Client order ID (required)
	Symbol         string // Product pair e.g. BTC-USD (required)
	Side           string // "1" buy, "2" sell (required)
	OrdType        string // Order type (required)
	TargetStrategy string // L, M, T, V, SL, R (optional)
	TimeInForce    string // 1, 3, 4, 6 (required)
	OrderQty       string // Size in base units (conditional)
	Price          string // Limit price (conditional)
	StopPx         string // Stop price for stop orders (conditional)
}

// BuildNewOrderSingle creates a New Order Single (D) message.
func BuildNewOrderSingle(senderCompID, targetCompID string, seqNum int, p NewOrderParams) []byte {
	b := header(constants.MsgTypeNewOrderSingle, senderCompID, targetCompID, seqNum)

	if p.Account != "" {
		b.Set(int(constants.TagAccount), p.Account)
	}
	b.Set(int(constants.TagClOrdID), p.ClOrdID)
	b.Set(int(constants.TagSymbol), p.Symbol)
	b.Set(int(constants.TagSide), p.Side)
	b.Set(int(constants.TagOrdType), p.OrdType)
	if p.TargetStrategy != "" {
		b.Set(int(constants.TagTargetStrategy), p.TargetStrategy)
	}
	b.Set(int(constants.TagTimeInForce), p.TimeInForce)
	b.Set(int(constants.TagTransactTime), time.Now().UTC().Format(constants.FixTimeFormat))

	if p.OrderQty != "" {
		b.Set(int(constants.TagOrderQty), p.OrderQty)
	}
	if p.Price != "" {
		b.Set(int(constants.TagPrice), p.Price)
	}
	if p.StopPx != "" {
		b.Set(int(constants.TagStopPx), p.StopPx)
	}

	return b.Build()
}

// --- Order Cancel Request (F) ---

// CancelOrderParams contains parameters for canceling an order.
type CancelOrderParams struct {
	Account     string
	ClOrdID     string // Cancel request ID (required)
	OrigClOrdID string // Original order's ClOrdID (required)
	OrderID     string // Venue order ID, if known (conditional)
	Symbol      string
	Side        string
	OrderQty    string
}

// BuildOrderCancelRequest creates an Order Cancel Request (F) message.
func BuildOrderCancelRequest(senderCompID, targetCompID string, seqNum int, p CancelOrderParams) []byte {
	b := header(constants.MsgTypeOrderCancelRequest, senderCompID, targetCompID, seqNum)

	if p.Account != "" {
		b.Set(int(constants.TagAccount), p.Account)
	}
	b.Set(int(constants.TagClOrdID), p.ClOrdID)
	b.Set(int(constants.TagOrigClOrdID), p.OrigClOrdID)
	if p.OrderID != "" {
		b.Set(int(constants.TagOrderID), p.OrderID)
	}
	b.Set(int(constants.TagSymbol), p.Symbol)
	b.Set(int(constants.TagSide), p.Side)
	b.Set(int(constants.TagTransactTime), time.Now().UTC().Format(constants.FixTimeFormat))
	if p.OrderQty != "" {
		b.Set(int(constants.TagOrderQty), p.OrderQty)
	}

	return b.Build()
}

// --- Order Cancel/Replace Request (G) ---

// ReplaceOrderParams contains parameters for modifying an order.
type ReplaceOrderParams struct {
	Account     string
	ClOrdID     string // New request ID (required, must differ from OrigClOrdID)
	OrigClOrdID string
	OrderID     string
	Symbol      string
	Side        string
	OrdType     string
	OrderQty    string
	Price       string
	StopPx      string
}

// BuildOrderCancelReplaceRequest creates an Order Cancel/Replace Request (G) message.
func BuildOrderCancelReplaceRequest(senderCompID, targetCompID string, seqNum int, p ReplaceOrderParams) []byte {
	b := header(constants.MsgTypeOrderCancelReplace, senderCompID, targetCompID, seqNum)

	if p.Account != "" {
		b.Set(int(constants.TagAccount), p.Account)
	}
	b.Set(int(constants.TagClOrdID), p.ClOrdID)
	b.Set(int(constants.TagOrigClOrdID), p.OrigClOrdID)
	if p.OrderID != "" {
		b.Set(int(constants.TagOrderID), p.OrderID)
	}
	b.Set(int(constants.TagSymbol), p.Symbol)
	b.Set(int(constants.TagSide), p.Side)
	b.Set(int(constants.TagOrdType), p.OrdType)
	b.Set(int(constants.TagHandlInst), constants.HandlInstAutomatedNoIntervention)
	b.Set(int(constants.TagTransactTime), time.Now().UTC().Format(constants.FixTimeFormat))
	if p.Price != "" {
		b.Set(int(constants.TagPrice), p.Price)
	}
	if p.OrderQty != "" {
		b.Set(int(constants.TagOrderQty), p.OrderQty)
	}
	if p.StopPx != "" {
		b.Set(int(constants.TagStopPx), p.StopPx)
	}

	return b.Build()
}

// --- Order Status Request (H) ---

// BuildOrderStatusRequest creates an Order Status Request (H) message.
func BuildOrderStatusRequest(senderCompID, targetCompID string, seqNum int, orderID, clOrdID, symbol, side string) []byte {
	b := header(constants.MsgTypeOrderStatusRequest, senderCompID, targetCompID, seqNum)
	if orderID != "" {
		b.Set(int(constants.TagOrderID), orderID)
	}
	if clOrdID != "" {
		b.Set(int(constants.TagClOrdID), clOrdID)
	}
	if symbol != "" {
		b.Set(int(constants.TagSymbol), symbol)
	}
	if side != "" {
		b.Set(int(constants.TagSide), side)
	}
	return b.Build()
}

// FormatSeqRange renders a begin/end sequence pair as "begin..end" for log
// lines. No package in this module calls it at present.
func FormatSeqRange(begin, end int) string {
	return strconv.Itoa(begin) + ".." + strconv.Itoa(end)
}
