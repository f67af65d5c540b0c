package ccache

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
		TktVNO:  5,
		Realm:   "KINGDOM.HEARTS",
		SName:   sname,
		EncPart: types.EncryptedData{EType: 18, Cipher: []byte("RAW_TICKET_ENC_PART")},
	}
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	clientPart := messages.EncKdcRepPart{
		Key:       types.EncryptionKey{KeyType: 18, KeyValue: key},
		AuthTime:  time.Date(2019, 4, 18, 15, 0, 31, 0, time.UTC),
		StartTime: time.Date(2019, 4, 18, 15, 0, 31, 0, time.UTC),
		EndTime:   time.Date(2019, 4, 18, 16, 0, 31, 0, time.UTC),
		RenewTill: time.Date(2019, 4, 25, 15, 0, 31, 0, time.UTC),
		Flags:     types.FlagsFromUint32(0x40A10000),
		SRealm:    "KINGDOM.HEARTS",
		SName:     sname,
	}
	cred := credential.New("KINGDOM.HEARTS", cname, ticket, clientPart)
	wh := credential.NewWarehouse("KINGDOM.HEARTS", cname)
	require.NoError(t, wh.Add(cred))
	return wh
}

// TestCCacheExportFields checks the wire-level fields FromWarehouse
// produces for a single AS-REP-derived credential.
func TestCCacheExportFields(t *testing.T) {
	wh := buildWarehouse(t)
	c, err := FromWarehouse(wh)
	require.NoError(t, err)

	require.EqualValues(t, 1, c.DefaultPrincipal.NameType)
	require.Equal(t, "KINGDOM.HEARTS", c.DefaultPrincipal.Realm)
	require.Equal(t, []string{"mickey"}, c.DefaultPrincipal.Components)

	require.Len(t, c.Credentials, 1)
	cred := c.Credentials[0]
	require.Equal(t, []string{"krbtgt", "KINGDOM.HEARTS"}, cred.Server.Components)
	require.EqualValues(t, 18, cred.Key.KeyType)
	require.Len(t, cred.Key.KeyValue, 32)
	require.EqualValues(t, 0x40A10000, cred.TicketFlags)
	decodedTicket, err := types.UnmarshalTicket(cred.Ticket)
	require.NoError(t, err)
	require.Equal(t, []byte("RAW_TICKET_ENC_PART"), decodedTicket.EncPart.Cipher)
}

// TestCCacheRoundTrip checks that Export→Parse→ToWarehouse recovers the
// original warehouse contents.
func TestCCacheRoundTrip(t *testing.T) {
	wh := buildWarehouse(t)
	c, err := FromWarehouse(wh)
	require.NoError(t, err)

	exported := c.Export()
	require.Equal(t, byte(5), exported[0])
	require.Equal(t, byte(FileFormatVersion), exported[1])

	parsed, err := Parse(exported)
	require.NoError(t, err)
	require.Equal(t, c.DefaultPrincipal, parsed.DefaultPrincipal)
	require.Len(t, parsed.Credentials, 1)
	require.Equal(t, c.Credentials[0].Server, parsed.Credentials[0].Server)
	require.Equal(t, c.Credentials[0].Key.KeyValue, parsed.Credentials[0].Key.KeyValue)
	require.Equal(t, c.Credentials[0].TicketFlags, parsed.Credentials[0].TicketFlags)

	wh2, err := parsed.ToWarehouse()
	require.NoError(t, err)
	require.Equal(t, wh.Realm, wh2.Realm)
	require.True(t, wh.Client.Equal(wh2.Client))
	require.Len(t, wh2.Credentials, 1)
}

func TestCCacheGetEntriesFiltersConfigPseudoPrincipals(t *testing.T) {
	c := &CCache{
		Version:          FileFormatVersion,
		DefaultPrincipal: Principal{NameType: 1, Realm: "KINGDOM.HEARTS", Components: []string{"mickey"}},
		Credentials: []Credential{
			{Server: Principal{Realm: "KINGDOM.HEARTS", Components: []string{"krbtgt", "KINGDOM.HEARTS"}}},
			{Server: Principal{Realm: "X-CACHECONF:", Components: []string{"krb5_ccache_conf_data", "pa_type"}}},
		},
	}
	entries := c.GetEntries()
	require.Len(t, entries, 1)
	require.Equal(t, "KINGDOM.HEARTS", entries[0].Server.Realm)
}
