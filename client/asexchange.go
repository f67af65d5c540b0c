// Package client implements the AS exchange state machine: build a
// request, round-trip it through a Transport, answer a
// pre-authentication challenge if the KDC demands one, and decrypt the
// reply into a credential.Credential.
package client

import (
	"context"
	"time"

	"github.com/cention-sany/krb5/byteutil"
	"github.com/cention-sany/krb5/credential"
	"github.com/cention-sany/krb5/crypto"
	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/messages"
	"github.com/cention-sany/krb5/transport"
	"github.com/cention-sany/krb5/types"
)

// ticketLifetime is the till/rtime horizon the initial request asks for:
// 20·52 weeks (1040 weeks, about 20 years).
const ticketLifetime = 20 * 52 * 7 * 24 * time.Hour

// RequestTGT runs the full AS exchange for username@realm using key,
// returning the resulting Credential on success.
func RequestTGT(ctx context.Context, tr transport.Transport, realm, username string, key Key) (credential.Credential, error) {
	if realm == "" {
		return credential.Credential{}, kerberr.FieldErr(kerberr.NotAvailableData, "realm")
	}
	if username == "" {
		return credential.Credential{}, kerberr.FieldErr(kerberr.NotAvailableData, "username")
	}
	cname, err := types.NewPrincipalName(types.NTPrincipal, username)
	if err != nil {
		return credential.Credential{}, err
	}

	a, err := buildASReq(realm, cname, key.proposedEtypes(), nil)
	if err != nil {
		return credential.Credential{}, err
	}

	reqBytes, err := a.Marshal()
	if err != nil {
		return credential.Credential{}, err
	}
	replyBytes, err := tr.Send(ctx, realm, reqBytes)
	if err != nil {
		return credential.Credential{}, err
	}

	rep, krbErr, err := classifyReply(replyBytes)
	if err != nil {
		return credential.Credential{}, err
	}

	if krbErr != nil {
		if krbErr.ErrorCode != messages.KdcErrPreauthRequired {
			return credential.Credential{}, krbErrorResponse(krbErr)
		}
		etype, salt, err := choosePreauth(krbErr, key, realm, username)
		if err != nil {
			return credential.Credential{}, err
		}
		rep, err = preauthRoundTrip(ctx, tr, realm, cname, key, etype, salt, a.ReqBody.Nonce)
		if err != nil {
			return credential.Credential{}, err
		}
	}

	return assembleCredential(rep, key, a.ReqBody.Nonce)
}

// buildASReq assembles the initial AS-REQ: kdc_options, sname =
// krbtgt/REALM, cname = username, till = rtime = now + 20·52 weeks,
// random nonce, a PA-PAC-REQUEST(true) datum, and (when padata is
// non-nil) the pre-authentication data a preauth retry attaches.
func buildASReq(realm string, cname types.PrincipalName, etypes []int32, padata []types.PaData) (messages.ASReq, error) {
	nonce, err := byteutil.Default.Uint32()
	if err != nil {
		return messages.ASReq{}, kerberr.Wrap(kerberr.IOError, "generating nonce", err)
	}
	nonce >>= 1 // keep within int32 range per RFC 4120's signed Int32 nonce field

	now := time.Now().UTC()
	till := now.Add(ticketLifetime)
	body := types.KdcReqBody{
		KDCOptions: types.NewFlags(types.FlagForwardable, types.FlagRenewable, types.FlagCanonicalize, types.FlagRenewableOk),
		CName:      cname,
		Realm:      realm,
		SName:      types.ServicePrincipal(realm),
		Till:       till,
		RTime:      till,
		Nonce:      int32(nonce),
		EType:      etypes,
	}

	all := append([]types.PaData{types.NewPacRequestPaData(true)}, padata...)
	return messages.NewASReq(body, all...), nil
}

// classifyReply tries AS-REP first, then KRB-ERROR; a codec failure of
// both is fatal.
func classifyReply(b []byte) (messages.ASRep, *messages.KrbError, error) {
	if rep, err := messages.UnmarshalASRep(b); err == nil {
		return rep, nil, nil
	}
	if krbErr, err := messages.UnmarshalKrbError(b); err == nil {
		return messages.ASRep{}, krbErr, nil
	}
	return messages.ASRep{}, nil, kerberr.New(kerberr.ParseAsRepError, "reply is neither a valid AS-REP nor a valid KRB-ERROR")
}

// choosePreauth inspects e_data as MethodData for ETYPE-INFO2; it falls
// back to the first proposed etype and the rule-based salt otherwise.
func choosePreauth(krbErr *messages.KrbError, key Key, realm, username string) (etype int32, salt string, err error) {
	md, mdErr := krbErr.MethodData()
	if mdErr == nil {
		if entries, ok := md.FindEtypeInfo2(); ok {
			return entries[0].EType, entries[0].Salt, nil
		}
	}
	proposed := key.proposedEtypes()
	if len(proposed) == 0 {
		return 0, "", kerberr.New(kerberr.NoProvidedSupportedCipherAlgorithm, "no proposed etype to fall back on")
	}
	return proposed[0], types.Salt(realm, username), nil
}

// preauthRoundTrip encrypts PA-ENC-TS-ENC under the derived key with
// key-usage 1, attaches it as PA-ENC-TIMESTAMP on a fresh AS-REQ
// restricted to the single chosen etype, and submits it. A KRB-ERROR
// here is fatal.
func preauthRoundTrip(ctx context.Context, tr transport.Transport, realm string, cname types.PrincipalName, key Key, etype int32, salt string, nonce int32) (messages.ASRep, error) {
	encKey, err := key.encryptionKey(etype, salt)
	if err != nil {
		return messages.ASRep{}, err
	}
	profile, err := crypto.ForEType(etype)
	if err != nil {
		return messages.ASRep{}, err
	}

	now := time.Now().UTC()
	tsBytes, err := types.MarshalPaEncTSEnc(now)
	if err != nil {
		return messages.ASRep{}, kerberr.Wrap(kerberr.Asn1Error, "marshaling PA-ENC-TS-ENC", err)
	}
	cipher, err := profile.Encrypt(encKey, crypto.KeyUsageASReqPaEncTimestamp, tsBytes)
	if err != nil {
		return messages.ASRep{}, err
	}
	paEncTS := types.NewEncTimestampPaData(types.EncryptedData{EType: etype, Cipher: cipher})

	a, err := buildASReq(realm, cname, []int32{etype}, []types.PaData{paEncTS})
	if err != nil {
		return messages.ASRep{}, err
	}
	a.ReqBody.Nonce = nonce

	reqBytes, err := a.Marshal()
	if err != nil {
		return messages.ASRep{}, err
	}
	replyBytes, err := tr.Send(ctx, realm, reqBytes)
	if err != nil {
		return messages.ASRep{}, err
	}

	rep, krbErr, err := classifyReply(replyBytes)
	if err != nil {
		return messages.ASRep{}, err
	}
	if krbErr != nil {
		return messages.ASRep{}, krbErrorResponse(krbErr)
	}
	return rep, nil
}

// krbErrorResponse surfaces a KDC's KRB-ERROR as a KrbErrorResponse error
// carrying the decoded message as its Payload and wrapped Cause.
func krbErrorResponse(krbErr *messages.KrbError) error {
	return kerberr.Wrap(kerberr.KrbErrorResponse, "KDC replied with KRB-ERROR", krbErr).WithPayload(krbErr)
}

// assembleCredential resolves a decryption key, decrypts enc_part under
// key-usage 3, parses it as EncKdcRepPart, verifies the nonce matches
// the request, and assembles the Credential.
func assembleCredential(rep messages.ASRep, key Key, wantNonce int32) (credential.Credential, error) {
	salt := ""
	if entries, ok := types.MethodData(rep.PAData).FindEtypeInfo2(); ok {
		salt = entries[0].Salt
	}

	encKey, err := key.encryptionKey(rep.EncPart.EType, salt)
	if err != nil {
		return credential.Credential{}, err
	}
	profile, err := crypto.ForEType(rep.EncPart.EType)
	if err != nil {
		return credential.Credential{}, err
	}
	plaintext, err := profile.Decrypt(encKey, crypto.KeyUsageASRepEncPart, rep.EncPart.Cipher)
	if err != nil {
		return credential.Credential{}, err
	}
	clientPart, err := messages.UnmarshalEncKdcRepPart(plaintext)
	if err != nil {
		return credential.Credential{}, err
	}
	if clientPart.Nonce != wantNonce {
		return credential.Credential{}, kerberr.Newf(kerberr.ProtocolNonceMismatch,
			"AS-REP nonce %d does not match request nonce %d", clientPart.Nonce, wantNonce)
	}
	return credential.New(rep.CRealm, rep.CName, rep.Ticket, clientPart), nil
}

// keyEtypeMismatch builds the DecryptionError a typed key's etype
// mismatch produces: "Key etype = X doesn't match with message etype = Y".
func keyEtypeMismatch(keyEtype, msgEtype int32) error {
	return kerberr.Newf(kerberr.DecryptionError, "Key etype = %d doesn't match with message etype = %d", keyEtype, msgEtype)
}
