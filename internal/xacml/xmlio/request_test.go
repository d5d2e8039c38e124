package xmlio

import (
	"strings"
	"testing"

	xacmlctx "github.com/echo-xacml/pdp/internal/xacml/context"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

const sampleRequest = `<?xml version="1.0" encoding="UTF-8"?>
<Request xmlns="urn:oasis:names:tc:xacml:3.0:core:schema:wd-17" ReturnPolicyIdList="true">
  <Attributes Category="urn:oasis:names:tc:xacml:1.0:subject-category:access-subject">
    <Attribute AttributeId="role" IncludeInResult="false">
      <AttributeValue DataType="http://www.w3.org/2001/XMLSchema#string">clinician</AttributeValue>
    </Attribute>
  </Attributes>
  <Attributes Category="urn:oasis:names:tc:xacml:3.0:attribute-category:resource">
    <Attribute AttributeId="task-id" IncludeInResult="true">
      <AttributeValue DataType="http://www.w3.org/2001/XMLSchema#string">task-42</AttributeValue>
    </Attribute>
    <Content>
      <record><owner>dr-smith</owner></record>
    </Content>
  </Attributes>
</Request>`

func TestParseRequestPopulatesAttributesAndReturnPolicyIdList(t *testing.T) {
	req, err := ParseRequest(strings.NewReader(sampleRequest))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if !req.ReturnPolicyIdList {
		t.Fatal("expected ReturnPolicyIdList to be true")
	}
	subjectAttrs := req.Attributes[xacmlctx.CategorySubject]
	if len(subjectAttrs) != 1 || subjectAttrs[0].ID != "role" {
		t.Fatalf("expected one subject attribute \"role\", got %+v", subjectAttrs)
	}
	bag := subjectAttrs[0].Values
	if bag.Size() != 1 || !bag.Contains(value.StringValue("clinician")) {
		t.Fatalf("expected role=clinician, got %+v", bag)
	}
}

func TestParseRequestPreservesContentFragment(t *testing.T) {
	req, err := ParseRequest(strings.NewReader(sampleRequest))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	cf, ok := req.Content[xacmlctx.CategoryResource]
	if !ok || !strings.Contains(string(cf.XML), "dr-smith") {
		t.Fatalf("expected the resource Content fragment to be preserved, got %+v", cf)
	}
}

func TestParseRequestMalformedXMLIsError(t *testing.T) {
	if _, err := ParseRequest(strings.NewReader("<Request><Attributes>")); err == nil {
		t.Fatal("expected an error for truncated XML")
	}
}

func TestParseRequestUnknownDataTypeIsError(t *testing.T) {
	doc := `<Request xmlns="urn:oasis:names:tc:xacml:3.0:core:schema:wd-17">
  <Attributes Category="urn:oasis:names:tc:xacml:1.0:subject-category:access-subject">
    <Attribute AttributeId="role">
      <AttributeValue DataType="http://example.com/unknown-type">x</AttributeValue>
    </Attribute>
  </Attributes>
</Request>`
	if _, err := ParseRequest(strings.NewReader(doc)); err == nil {
		t.Fatal("expected an error for an unrecognized dataType")
	}
}

func TestParseRequestMissingCategoryIsError(t *testing.T) {
	doc := `<Request xmlns="urn:oasis:names:tc:xacml:3.0:core:schema:wd-17">
  <Attributes>
    <Attribute AttributeId="role">
      <AttributeValue DataType="http://www.w3.org/2001/XMLSchema#string">x</AttributeValue>
    </Attribute>
  </Attributes>
</Request>`
	if _, err := ParseRequest(strings.NewReader(doc)); err == nil {
		t.Fatal("expected an error for an <Attributes> missing its Category")
	}
}

func TestParseRequestDuplicateAttributeDeclarationsAreUnioned(t *testing.T) {
	doc := `<Request xmlns="urn:oasis:names:tc:xacml:3.0:core:schema:wd-17">
  <Attributes Category="urn:oasis:names:tc:xacml:3.0:attribute-category:resource">
    <Attribute AttributeId="tag">
      <AttributeValue DataType="http://www.w3.org/2001/XMLSchema#string">a</AttributeValue>
    </Attribute>
  </Attributes>
  <Attributes Category="urn:oasis:names:tc:xacml:3.0:attribute-category:resource">
    <Attribute AttributeId="tag">
      <AttributeValue DataType="http://www.w3.org/2001/XMLSchema#string">b</AttributeValue>
    </Attribute>
  </Attributes>
</Request>`
	req, err := ParseRequest(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	attrs := req.Attributes[xacmlctx.CategoryResource]
	if len(attrs) != 1 || attrs[0].Values.Size() != 2 {
		t.Fatalf("expected one merged \"tag\" attribute with a 2-value bag, got %+v", attrs)
	}
}
