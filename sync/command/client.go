package command

import (
	"time"

	"github.com/WeiqiJust/NDN-Repo/auth"
	"github.com/WeiqiJust/NDN-Repo/auth/ecdh"
	"github.com/WeiqiJust/NDN-Repo/face"
	"github.com/WeiqiJust/NDN-Repo/sync/names"
	"github.com/WeiqiJust/NDN-Repo/sync/syncerr"
)

// Client expresses command Interests against a repo's command prefix,
// for use by the control tool (cmd/ndnreposync).
type Client struct {
	CommandPrefix string
	Face          face.Face
	Signer        auth.Signer // nil sends an empty signature (accepted only if the peer has no Validator)
	// DaemonPublic, if set, takes precedence over Signer: Send generates
	// a fresh ECDH keypair, negotiates a session against DaemonPublic,
	// signs with that session, and carries the fresh public key in the
	// request's Params for the daemon to negotiate the same session.
	DaemonPublic []byte
	Lifetime     time.Duration
}

// Send expresses verb with params and blocks until a status reply
// arrives or lifetime elapses.
func (c *Client) Send(verb Verb, params Params) (Status, error) {
	signer := c.Signer
	if len(c.DaemonPublic) > 0 {
		kp, err := ecdh.GenerateKeyPair()
		if err != nil {
			return 0, err
		}
		session, err := kp.Negotiate(c.DaemonPublic)
		if err != nil {
			return 0, err
		}
		params.ClientPublic = kp.Public
		signer = session
	}

	paramsRaw := EncodeParams(params)
	payload := signablePayload(c.CommandPrefix, string(verb), paramsRaw)
	var sig []byte
	if signer != nil {
		s, err := signer.Sign(payload)
		if err != nil {
			return 0, err
		}
		sig = s
	}
	name := names.CommandInterest(c.CommandPrefix, string(verb), paramsRaw, sig)

	lifetime := c.Lifetime
	if lifetime <= 0 {
		lifetime = 4 * time.Second
	}

	type result struct {
		status Status
		err    error
	}
	out := make(chan result, 1)
	c.Face.ExpressInterest(
		face.Interest{Name: name, MustBeFresh: true, Lifetime: lifetime},
		func(d face.Data) {
			if len(d.Content) < statusSize {
				out <- result{err: &syncerr.DecodeError{Context: "command reply", Err: errMalformedReply}}
				return
			}
			// A check reply's Content may carry a diagnostic payload
			// (a memsize report) after the status; Send only reports
			// the status itself.
			out <- result{status: decodeStatus(d.Content[:statusSize])}
		},
		func() { out <- result{err: errCommandTimeout} },
	)
	r := <-out
	return r.status, r.err
}

var errMalformedReply = &malformedReplyError{}

type malformedReplyError struct{}

func (*malformedReplyError) Error() string { return "command reply did not carry a full status code" }

var errCommandTimeout = &commandTimeoutError{}

type commandTimeoutError struct{}

func (*commandTimeoutError) Error() string { return "command Interest timed out" }
