// Package queue implements the packet-switch output queue disciplines:
// [AeolusQueue], the dual-priority header-trimming, bounce-aware,
// weighted-round-robin switch buffer the transport layer relies on for
// its correctness and performance properties, plus two simpler sibling
// disciplines ([RandomQueue], [CompositeQueue]) used as baselines.
//
// All three implement [packet.Sink] and [eventlist.Source]: they are
// driven synchronously on ReceivePacket (classification, admission,
// trim/drop/bounce decisions all happen inline, never suspending the
// caller) and asynchronously on DoNextEvent (service completion,
// scheduled against an [eventlist.List]).
package queue
