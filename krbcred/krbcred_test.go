package krbcred

import (
	"testing"
	"time"

	"github.com/cention-sany/krb5/credential"
	"github.com/cention-sany/krb5/messages"
	"github.com/cention-sany/krb5/types"
	"github.com/stretchr/testify/require"
)

func buildWarehouse(t *testing.T) credential.Warehouse {
	t.Helper()
	cname, err := types.NewPrincipalName(types.NTPrincipal, "mickey")
	require.NoError(t, err)
	sname := types.ServicePrincipal("KINGDOM.HEARTS")
	ticket := types.Ticket{
		TktVNO: 5, Realm: "KINGDOM.HEARTS", SName: sname,
		EncPart: types.EncryptedData{EType: 18, Cipher: []byte("opaque-ticket-enc-part")},
	}
	clientPart := messages.EncKdcRepPart{
		Key:      types.EncryptionKey{KeyType: 18, KeyValue: make([]byte, 32)},
		AuthTime: time.Date(2019, 4, 18, 15, 0, 31, 0, time.UTC),
		EndTime:  time.Date(2019, 4, 18, 16, 0, 31, 0, time.UTC),
		SRealm:   "KINGDOM.HEARTS",
		SName:    sname,
	}
	wh := credential.NewWarehouse("KINGDOM.HEARTS", cname)
	require.NoError(t, wh.Add(credential.New("KINGDOM.HEARTS", cname, ticket, clientPart)))
	return wh
}

func TestExportRoundTrip(t *testing.T) {
	wh := buildWarehouse(t)
	der, err := Export(wh)
	require.NoError(t, err)

	kc, err := Parse(der)
	require.NoError(t, err)
	require.Len(t, kc.Tickets, 1)
	require.Equal(t, "KINGDOM.HEARTS", kc.Tickets[0].Realm)
	require.EqualValues(t, 0, kc.EncPart.EType)

	part, err := DecryptedPart(kc)
	require.NoError(t, err)
	require.Len(t, part.TicketInfo, 1)
	require.Equal(t, "KINGDOM.HEARTS", part.TicketInfo[0].SRealm)
}

func TestExportEmptyWarehouseFails(t *testing.T) {
	cname, err := types.NewPrincipalName(types.NTPrincipal, "mickey")
	require.NoError(t, err)
	wh := credential.NewWarehouse("KINGDOM.HEARTS", cname)
	_, err = Export(wh)
	require.Error(t, err)
}
