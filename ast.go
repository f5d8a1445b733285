package pox

// The node set is closed. Each pass dispatches with an exhaustive type
// switch over the pointer types below; nodes are immutable after parsing and
// expression pointers double as identities for resolved scope distances.

type AstExpression interface {
	ExpressionLocation() *SourceLocation
	astExpression()
}

type AstStatement interface {
	StatementLocation() *SourceLocation
	astStatement()
}

type AstExpressionLiteral struct {
	Location *SourceLocation // Optional
	Value    Value
}

type AstExpressionGrouping struct {
	Location   *SourceLocation // Optional
	Expression AstExpression
}

type AstExpressionUnary struct {
	Operator Token
	Right    AstExpression
}

type AstExpressionBinary struct {
	Left     AstExpression
	Operator Token
	Right    AstExpression
}

type AstExpressionLogical struct {
	Left     AstExpression
	Operator Token
	Right    AstExpression
}

type AstExpressionVariable struct {
	Name Token
}

type AstExpressionAssign struct {
	Name  Token
	Value AstExpression
}

type AstExpressionCall struct {
	Callee    AstExpression
	Paren     Token
	Arguments []AstExpression
}

type AstExpressionGet struct {
	Object AstExpression
	Name   Token
}

type AstExpressionSet struct {
	Object AstExpression
	Name   Token
	Value  AstExpression
}

type AstExpressionThis struct {
	Keyword Token
}

type AstExpressionSuper struct {
	Keyword Token
	Method  Token
}

func (self *AstExpressionLiteral) ExpressionLocation() *SourceLocation  { return self.Location }
func (self *AstExpressionGrouping) ExpressionLocation() *SourceLocation { return self.Location }
func (self *AstExpressionUnary) ExpressionLocation() *SourceLocation    { return self.Operator.Location }
func (self *AstExpressionBinary) ExpressionLocation() *SourceLocation   { return self.Operator.Location }
func (self *AstExpressionLogical) ExpressionLocation() *SourceLocation  { return self.Operator.Location }
func (self *AstExpressionVariable) ExpressionLocation() *SourceLocation { return self.Name.Location }
func (self *AstExpressionAssign) ExpressionLocation() *SourceLocation   { return self.Name.Location }
func (self *AstExpressionCall) ExpressionLocation() *SourceLocation     { return self.Paren.Location }
func (self *AstExpressionGet) ExpressionLocation() *SourceLocation      { return self.Name.Location }
func (self *AstExpressionSet) ExpressionLocation() *SourceLocation      { return self.Name.Location }
func (self *AstExpressionThis) ExpressionLocation() *SourceLocation     { return self.Keyword.Location }
func (self *AstExpressionSuper) ExpressionLocation() *SourceLocation    { return self.Keyword.Location }

func (*AstExpressionLiteral) astExpression()  {}
func (*AstExpressionGrouping) astExpression() {}
func (*AstExpressionUnary) astExpression()    {}
func (*AstExpressionBinary) astExpression()   {}
func (*AstExpressionLogical) astExpression()  {}
func (*AstExpressionVariable) astExpression() {}
func (*AstExpressionAssign) astExpression()   {}
func (*AstExpressionCall) astExpression()     {}
func (*AstExpressionGet) astExpression()      {}
func (*AstExpressionSet) astExpression()      {}
func (*AstExpressionThis) astExpression()     {}
func (*AstExpressionSuper) astExpression()    {}

type AstStatementExpression struct {
	Location   *SourceLocation // Optional
	Expression AstExpression
}

type AstStatementPrint struct {
	Keyword    Token
	Expression AstExpression
}

type AstStatementVariable struct {
	Name        Token
	Initializer AstExpression // Optional
}

type AstStatementBlock struct {
	Location   *SourceLocation // Optional
	Statements []AstStatement
}

type AstStatementIf struct {
	Keyword   Token
	Condition AstExpression
	Then      AstStatement
	Else      AstStatement // Optional
}

type AstStatementWhile struct {
	Keyword   Token
	Condition AstExpression
	Body      AstStatement
}

type AstStatementFunction struct {
	Name       Token
	Parameters []Token
	Body       []AstStatement
}

type AstStatementReturn struct {
	Keyword Token
	Value   AstExpression // Optional
}

type AstStatementClass struct {
	Name       Token
	Superclass *AstExpressionVariable // Optional
	Methods    []*AstStatementFunction
}

func (self *AstStatementExpression) StatementLocation() *SourceLocation { return self.Location }
func (self *AstStatementPrint) StatementLocation() *SourceLocation      { return self.Keyword.Location }
func (self *AstStatementVariable) StatementLocation() *SourceLocation   { return self.Name.Location }
func (self *AstStatementBlock) StatementLocation() *SourceLocation      { return self.Location }
func (self *AstStatementIf) StatementLocation() *SourceLocation         { return self.Keyword.Location }
func (self *AstStatementWhile) StatementLocation() *SourceLocation      { return self.Keyword.Location }
func (self *AstStatementFunction) StatementLocation() *SourceLocation   { return self.Name.Location }
func (self *AstStatementReturn) StatementLocation() *SourceLocation     { return self.Keyword.Location }
func (self *AstStatementClass) StatementLocation() *SourceLocation      { return self.Name.Location }

func (*AstStatementExpression) astStatement() {}
func (*AstStatementPrint) astStatement()      {}
func (*AstStatementVariable) astStatement()   {}
func (*AstStatementBlock) astStatement()      {}
func (*AstStatementIf) astStatement()         {}
func (*AstStatementWhile) astStatement()      {}
func (*AstStatementFunction) astStatement()   {}
func (*AstStatementReturn) astStatement()     {}
func (*AstStatementClass) astStatement()      {}
