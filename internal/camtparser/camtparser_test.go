package camtparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-extract/internal/logging"
)

const sampleCAMT = `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.053.001.04">
  <BkToCstmrStmt>
    <Stmt>
      <Bal>
        <Tp><CdOrPrtry><Cd>OPBD</Cd></CdOrPrtry></Tp>
        <Amt Ccy="CHF">1000.00</Amt>
      </Bal>
      <Bal>
        <Tp><CdOrPrtry><Cd>CLBD</Cd></CdOrPrtry></Tp>
        <Amt Ccy="CHF">1150.00</Amt>
      </Bal>
      <Ntry>
        <Amt Ccy="CHF">50.00</Amt>
        <CdtDbtInd>DBIT</CdtDbtInd>
        <BookgDt><Dt>2024-01-02</Dt></BookgDt>
        <NtryDtls>
          <TxDtls>
            <RltdPties><Cdtr><Nm>Coop Genossenschaft</Nm></Cdtr></RltdPties>
            <RmtInf><Ustrd>Grocery purchase</Ustrd></RmtInf>
          </TxDtls>
        </NtryDtls>
      </Ntry>
      <Ntry>
        <Amt Ccy="CHF">200.00</Amt>
        <CdtDbtInd>CRDT</CdtDbtInd>
        <BookgDt><Dt>2024-01-05</Dt></BookgDt>
        <NtryDtls>
          <TxDtls>
            <RltdPties><Dbtr><Nm>ACME AG</Nm></Dbtr></RltdPties>
          </TxDtls>
        </NtryDtls>
        <AddtlNtryInf>Salary</AddtlNtryInf>
      </Ntry>
    </Stmt>
  </BkToCstmrStmt>
</Document>`

func TestDetect(t *testing.T) {
	assert.True(t, Detect([]byte(sampleCAMT)))
	assert.False(t, Detect([]byte("<html>not a statement</html>")))
	assert.False(t, Detect([]byte("Date,Amount\n2024-01-02,5")))
}

func TestParse(t *testing.T) {
	st, err := Parse([]byte(sampleCAMT), logging.NewMockLogger())
	require.NoError(t, err)

	require.NotNil(t, st.Opening)
	assert.Equal(t, "1000", st.Opening.String())
	require.NotNil(t, st.Closing)
	assert.Equal(t, "1150", st.Closing.String())

	require.Len(t, st.Transactions, 2)

	debit := st.Transactions[0]
	assert.Equal(t, "2024-01-02", debit.Date)
	assert.Equal(t, "50.00", debit.Amount)
	assert.Equal(t, "debit", debit.Type)
	assert.Equal(t, "Coop Genossenschaft", debit.Merchant)
	assert.Equal(t, "Grocery purchase", debit.Description)
	assert.Equal(t, 1.0, debit.ExtractionConfidence)

	credit := st.Transactions[1]
	assert.Equal(t, "credit", credit.Type)
	assert.Equal(t, "ACME AG", credit.Merchant)
	assert.Equal(t, "Salary", credit.Description)
}

func TestParseInvalidXML(t *testing.T) {
	_, err := Parse([]byte("<Ntry><broken"), logging.NewMockLogger())
	assert.Error(t, err)
}
